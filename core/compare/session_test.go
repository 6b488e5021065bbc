package compare

import (
	"testing"

	"genomecmp-core/fasta"
	"genomecmp-core/index"
	"genomecmp-core/match"
)

func newSession(t *testing.T, query, target string, p match.Params) *Session {
	t.Helper()
	tg := fasta.Parse(target)
	ix, err := index.Build(tg, p.PartSize(), p.ChunkSize, nil)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	s, err := New(fasta.Parse(query), tg, ix, p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestEvaluateReferenceScenario(t *testing.T) {
	p := match.Params{ChunkSize: 4, MaxDifferences: 1}
	s := newSession(t, "ACGATTTT", "ACGTACGTACGT", p)
	if !s.Evaluate(0) {
		t.Error("window ACGA should match")
	}
	if s.Evaluate(4) {
		t.Error("window TTTT should not match")
	}
	if hit, ok := s.Locate(0); !ok || hit.Start != 0 || hit.Distance != 1 {
		t.Errorf("Locate(0) = %+v, %v", hit, ok)
	}
}

func TestEvaluateBoundary(t *testing.T) {
	p := match.Params{ChunkSize: 4, MaxDifferences: 1}
	s := newSession(t, "TTTTACGT", "ACGTACGTACGT", p)
	last := s.QueryLen() - p.ChunkSize
	if s.MaxChunkStart() != last {
		t.Fatalf("MaxChunkStart = %d, want %d", s.MaxChunkStart(), last)
	}
	if !s.Evaluate(last) {
		t.Fatal("last window ACGT should match")
	}
	for _, bad := range []int{last + 1, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Evaluate(%d) should panic", bad)
				}
			}()
			s.Evaluate(bad)
		}()
	}
}

func TestNewRejectsMismatchedIndex(t *testing.T) {
	tg := fasta.Parse("ACGTACGTACGT")
	ix, err := index.Build(tg, 3, 6, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := New(fasta.Parse("ACGTACGT"), tg, ix, match.Params{ChunkSize: 4, MaxDifferences: 1}); err == nil {
		t.Fatal("expected error for index/param mismatch")
	}
}

func TestNewRejectsShortQuery(t *testing.T) {
	p := match.Params{ChunkSize: 4, MaxDifferences: 1}
	tg := fasta.Parse("ACGTACGT")
	ix, _ := index.Build(tg, 2, 4, nil)
	if _, err := New(fasta.Parse("ACG"), tg, ix, p); err == nil {
		t.Fatal("expected error for short query")
	}
	if _, err := New(fasta.Parse("ACGT"), tg, ix, match.Params{ChunkSize: 4, MaxDifferences: 4}); err == nil {
		t.Fatal("expected error for invalid params")
	}
}

func TestConcurrentEvaluate(t *testing.T) {
	p := match.Params{ChunkSize: 4, MaxDifferences: 1}
	s := newSession(t, "ACGTTTTTACGA", "ACGTACGTACGT", p)
	done := make(chan bool, 8)
	for w := 0; w < 8; w++ {
		go func() {
			ok := true
			for i := 0; i <= s.MaxChunkStart(); i++ {
				if s.Evaluate(i) != s.Evaluate(i) {
					ok = false
				}
			}
			done <- ok
		}()
	}
	for w := 0; w < 8; w++ {
		if !<-done {
			t.Fatal("non-deterministic Evaluate")
		}
	}
}
