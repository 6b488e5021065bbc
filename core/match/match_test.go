package match

import (
	"errors"
	"math/rand"
	"testing"

	"genomecmp-core/fasta"
	"genomecmp-core/index"
)

func buildIndex(t *testing.T, target fasta.Sequence, p Params) *index.Index {
	t.Helper()
	ix, err := index.Build(target, p.PartSize(), p.ChunkSize, nil)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	return ix
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		ok   bool
		part int
	}{
		{"reference", Params{ChunkSize: 4, MaxDifferences: 1}, true, 2},
		{"default", Params{ChunkSize: 42, MaxDifferences: 5}, true, 7},
		{"exact", Params{ChunkSize: 5, MaxDifferences: 0}, true, 5},
		{"too many diffs", Params{ChunkSize: 4, MaxDifferences: 4}, false, 0},
		{"zero chunk", Params{ChunkSize: 0, MaxDifferences: 0}, false, 0},
		{"negative diffs", Params{ChunkSize: 4, MaxDifferences: -1}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("want ErrInvalidParams, got %v", err)
			}
			if tt.ok && tt.p.PartSize() != tt.part {
				t.Fatalf("PartSize = %d, want %d", tt.p.PartSize(), tt.part)
			}
		})
	}
}

func TestHamming(t *testing.T) {
	if d := Hamming(fasta.Parse("ACGT"), fasta.Parse("ACGA")); d != 1 {
		t.Fatalf("want 1, got %d", d)
	}
	if d := Hamming(fasta.Parse("NNNN"), fasta.Parse("ACGT")); d != 4 {
		t.Fatalf("want 4, got %d", d)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unequal lengths")
		}
	}()
	Hamming(fasta.Parse("AC"), fasta.Parse("ACG"))
}

func TestReferenceScenario(t *testing.T) {
	p := Params{ChunkSize: 4, MaxDifferences: 1}
	target := fasta.Parse("ACGTACGTACGT")
	ix := buildIndex(t, target, p)

	hit, ok := Locate(fasta.Parse("ACGA"), ix, target, p.MaxDifferences)
	if !ok {
		t.Fatal("ACGA should match within one difference")
	}
	if hit.Start != 0 || hit.Seed != 0 || hit.Distance != 1 {
		t.Fatalf("unexpected hit %+v", hit)
	}
	if Find(fasta.Parse("TTTT"), ix, target, p.MaxDifferences) {
		t.Fatal("TTTT should not match")
	}
}

func TestSecondSeedRecoversMismatchInFirst(t *testing.T) {
	p := Params{ChunkSize: 4, MaxDifferences: 1}
	target := fasta.Parse("ACGTACGTACGT")
	ix := buildIndex(t, target, p)

	// First seed "TC" never occurs; second seed "GT" anchors at 2 => start 0.
	hit, ok := Locate(fasta.Parse("TCGT"), ix, target, 1)
	if !ok || hit.Seed != 1 || hit.Start != 0 {
		t.Fatalf("want hit via seed 1 at 0, got %+v ok=%v", hit, ok)
	}
}

func TestClampedCandidateVerifiedAtOrigin(t *testing.T) {
	// Seed 1 ("AA") only occurs at offset 0; implied start -2 clamps to 0.
	p := Params{ChunkSize: 4, MaxDifferences: 1}
	target := fasta.Parse("AACCGG")
	ix := buildIndex(t, target, p)
	if Find(fasta.Parse("TTAA"), ix, target, 1) {
		t.Fatal("clamped candidate AACC differs in 4 places and must be rejected")
	}
	// Seed 1 ("AC") at offset 1 clamps from -1 to 0; AACC vs TAAC is 2 apart.
	if hit, ok := Locate(fasta.Parse("TAAC"), ix, target, 1); ok {
		t.Fatalf("TAAC should not verify, got %+v", hit)
	}
}

// A true match ending the target is missed when the only intact seed
// starts beyond the last indexed offset.
func TestTailSeedNotIndexed(t *testing.T) {
	p := Params{ChunkSize: 4, MaxDifferences: 1}
	target := fasta.Parse("GGGGACGT")
	ix := buildIndex(t, target, p)
	if Hamming(fasta.Parse("TCGT"), target[4:8]) != 1 {
		t.Fatal("setup: expected distance 1 at offset 4")
	}
	if Find(fasta.Parse("TCGT"), ix, target, 1) {
		t.Fatal("seed GT at offset 6 is past the indexed range and should not anchor")
	}
}

// With D substitutions planted in distinct seeds, the untouched seed
// anchors the candidate and the full window verifies at distance D.
func TestPigeonholeExactlyD(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		p := Params{ChunkSize: 12, MaxDifferences: 2}
		s := p.PartSize()
		target := make(fasta.Sequence, 300)
		for i := range target {
			target[i] = fasta.Code(rng.Intn(4))
		}
		ix := buildIndex(t, target, p)

		// Keep every seed of the planted window inside the indexed range.
		start := rng.Intn(len(target) - 2*p.ChunkSize + 1)
		query := append(fasta.Sequence(nil), target[start:start+p.ChunkSize]...)
		keep := rng.Intn(p.MaxDifferences + 1)
		for j, n := 0, 0; j <= p.MaxDifferences && n < p.MaxDifferences; j++ {
			if j == keep {
				continue
			}
			pos := j*s + rng.Intn(s)
			query[pos] = (query[pos] + 1) % 4
			n++
		}
		if Hamming(query, target[start:start+p.ChunkSize]) != p.MaxDifferences {
			t.Fatalf("trial %d: setup did not plant %d substitutions", trial, p.MaxDifferences)
		}
		if !Find(query, ix, target, p.MaxDifferences) {
			t.Fatalf("trial %d: missed match at %d (query %s)", trial, start, query)
		}
	}
}

func TestLocatePanicsOnShortQuery(t *testing.T) {
	p := Params{ChunkSize: 4, MaxDifferences: 1}
	target := fasta.Parse("ACGTACGT")
	ix := buildIndex(t, target, p)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Locate(fasta.Parse("ACG"), ix, target, 1)
}
