package index

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"genomecmp-core/fasta"
)

func TestBuildReferenceScenario(t *testing.T) {
	seq := fasta.Parse("ACGTACGTACGT")
	ix, err := Build(seq, 2, 4, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[string][]uint32{
		"AC": {0, 4, 8},
		"CG": {1, 5},
		"GT": {2, 6},
		"TA": {3, 7},
	}
	for seed, offs := range want {
		if got := ix.Lookup(fasta.Parse(seed)); !reflect.DeepEqual(got, offs) {
			t.Errorf("Lookup(%s) = %v, want %v", seed, got, offs)
		}
	}
	if got := ix.Lookup(fasta.Parse("TT")); got != nil {
		t.Errorf("Lookup(TT) = %v, want nil", got)
	}
	if ix.Positions() != 9 || ix.Buckets() != 25 {
		t.Errorf("positions=%d buckets=%d", ix.Positions(), ix.Buckets())
	}
}

func TestKeyIsBase5MSBFirst(t *testing.T) {
	if got := Key(fasta.Sequence{fasta.C, fasta.A}); got != 5 {
		t.Fatalf("Key(CA) = %d, want 5", got)
	}
	if got := Key(fasta.Sequence{fasta.N, fasta.N, fasta.N}); got != 124 {
		t.Fatalf("Key(NNN) = %d, want 124", got)
	}
}

// Lookup must return exactly the offsets a brute-force scan finds.
func TestLookupMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	seq := make(fasta.Sequence, 400)
	for i := range seq {
		seq[i] = fasta.Code(rng.Intn(fasta.AlphabetSize))
	}
	const k, c = 3, 9
	ix, err := Build(seq, k, c, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	end := len(seq) - c + 1
	for key := 0; key < TableSize(k); key++ {
		var want []uint32
		for i := 0; i < end; i++ {
			if Key(seq[i:i+k]) == key {
				want = append(want, uint32(i))
			}
		}
		if got := ix.Bucket(key); !reflect.DeepEqual(nilIfEmpty(got), want) {
			t.Fatalf("bucket %d = %v, want %v", key, got, want)
		}
	}
}

func nilIfEmpty(b []uint32) []uint32 {
	if len(b) == 0 {
		return nil
	}
	return b
}

func TestBuildTailOffsetsExcluded(t *testing.T) {
	// "TT" only occurs past the last full chunk start.
	ix, err := Build(fasta.Parse("ACGTACTT"), 2, 4, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := ix.Lookup(fasta.Parse("TT")); got != nil {
		t.Fatalf("tail seed indexed: %v", got)
	}
}

func TestBuildErrors(t *testing.T) {
	seq := fasta.Parse("ACGT")
	if _, err := Build(seq, 2, 5, nil); !errors.Is(err, ErrTooShort) {
		t.Fatalf("want ErrTooShort, got %v", err)
	}
	if _, err := Build(seq, 0, 4, nil); err == nil {
		t.Fatal("want error for part size 0")
	}
	if _, err := Build(seq, 3, 2, nil); err == nil {
		t.Fatal("want error for part size > chunk size")
	}
	if _, err := Build(seq, MaxPartSize+1, 40, nil); err == nil {
		t.Fatal("want error for oversized part size")
	}
}

func TestBuildProgress(t *testing.T) {
	var last, calls int
	_, err := Build(fasta.Parse("ACGTACGTACGT"), 2, 4, func(done, total int) {
		calls++
		last = done
		if total != 9 {
			t.Fatalf("total = %d, want 9", total)
		}
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if calls == 0 || last != 9 {
		t.Fatalf("progress calls=%d last=%d", calls, last)
	}
}

func TestFromBuckets(t *testing.T) {
	ix, _ := Build(fasta.Parse("ACGTACGTACGT"), 2, 4, nil)
	table := make([][]uint32, ix.Buckets())
	for k := range table {
		table[k] = ix.Bucket(k)
	}
	back, err := FromBuckets(2, 4, table)
	if err != nil {
		t.Fatalf("FromBuckets: %v", err)
	}
	if back.Positions() != ix.Positions() {
		t.Fatalf("positions %d != %d", back.Positions(), ix.Positions())
	}
	if _, err := FromBuckets(2, 4, table[:3]); err == nil {
		t.Fatal("want error for short table")
	}
	table[0] = []uint32{4, 4}
	if _, err := FromBuckets(2, 4, table); err == nil {
		t.Fatal("want error for non-ascending bucket")
	}
}

func TestLookupPanicsOnWrongLength(t *testing.T) {
	ix, _ := Build(fasta.Parse("ACGTACGT"), 2, 4, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	ix.Lookup(fasta.Parse("ACG"))
}
