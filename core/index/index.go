// core/index/index.go
package index

import (
	"errors"
	"fmt"
	"math"

	"genomecmp-core/fasta"
)

// MaxPartSize bounds the seed length so the 5^k bucket table stays
// addressable. 5^13 is already ~1.2 billion buckets.
const MaxPartSize = 13

// ErrTooShort is returned by Build when the sequence holds fewer symbols
// than one chunk.
var ErrTooShort = errors.New("index: sequence shorter than chunk size")

// Index maps every seed of a target sequence to the ascending offsets at
// which it starts. The table is a contiguous slice of 5^partSize buckets
// addressed by the base-5 value of the seed; it is never mutated after
// Build or FromBuckets returns.
type Index struct {
	buckets   [][]uint32
	partSize  int
	chunkSize int
	positions int
}

// Key returns the base-5, most-significant-digit-first value of window.
// N participates as digit 4.
func Key(window []fasta.Code) int {
	k := 0
	for _, c := range window {
		k = k*fasta.AlphabetSize + int(c)
	}
	return k
}

// TableSize returns 5^partSize.
func TableSize(partSize int) int {
	n := 1
	for i := 0; i < partSize; i++ {
		n *= fasta.AlphabetSize
	}
	return n
}

func checkShape(partSize, chunkSize int) error {
	switch {
	case partSize < 1:
		return fmt.Errorf("index: part size must be ≥ 1 (got %d)", partSize)
	case partSize > MaxPartSize:
		return fmt.Errorf("index: part size %d exceeds maximum %d", partSize, MaxPartSize)
	case chunkSize < partSize:
		return fmt.Errorf("index: chunk size %d smaller than part size %d", chunkSize, partSize)
	}
	return nil
}

// Build indexes every offset i in [0, len(seq)-chunkSize+1) under the key
// of seq[i:i+partSize]. Offsets whose chunk would run past the end of the
// sequence are never stored. progress, if non-nil, is called about once
// per percent with the number of offsets scanned so far.
func Build(seq fasta.Sequence, partSize, chunkSize int, progress func(done, total int)) (*Index, error) {
	if err := checkShape(partSize, chunkSize); err != nil {
		return nil, err
	}
	if len(seq) < chunkSize {
		return nil, fmt.Errorf("%w: length %d, chunk %d", ErrTooShort, len(seq), chunkSize)
	}
	end := len(seq) - chunkSize + 1
	if uint64(end) > math.MaxUint32 {
		return nil, fmt.Errorf("index: %d offsets exceed the 32-bit offset range", end)
	}

	buckets := make([][]uint32, TableSize(partSize))
	step := end / 100
	if step == 0 {
		step = 1
	}
	for i := 0; i < end; i++ {
		if progress != nil && i%step == 0 {
			progress(i, end)
		}
		k := Key(seq[i : i+partSize])
		buckets[k] = append(buckets[k], uint32(i))
	}
	if progress != nil {
		progress(end, end)
	}
	return &Index{buckets: buckets, partSize: partSize, chunkSize: chunkSize, positions: end}, nil
}

// FromBuckets reassembles an Index from a decoded bucket table. The table
// must hold exactly 5^partSize buckets with strictly ascending offsets.
func FromBuckets(partSize, chunkSize int, buckets [][]uint32) (*Index, error) {
	if err := checkShape(partSize, chunkSize); err != nil {
		return nil, err
	}
	if want := TableSize(partSize); len(buckets) != want {
		return nil, fmt.Errorf("index: table has %d buckets, want %d", len(buckets), want)
	}
	total := 0
	for k, b := range buckets {
		for j := 1; j < len(b); j++ {
			if b[j] <= b[j-1] {
				return nil, fmt.Errorf("index: bucket %d not strictly ascending at %d", k, j)
			}
		}
		total += len(b)
	}
	return &Index{buckets: buckets, partSize: partSize, chunkSize: chunkSize, positions: total}, nil
}

// Lookup returns the offsets whose seed equals window, or nil when the
// seed never occurs. The returned slice is shared; callers must not
// modify it. window must be exactly PartSize codes long.
func (ix *Index) Lookup(window []fasta.Code) []uint32 {
	if len(window) != ix.partSize {
		panic(fmt.Sprintf("index: lookup window length %d, want %d", len(window), ix.partSize))
	}
	b := ix.buckets[Key(window)]
	if len(b) == 0 {
		return nil
	}
	return b
}

// Bucket returns the raw bucket for key (possibly empty).
func (ix *Index) Bucket(key int) []uint32 { return ix.buckets[key] }

func (ix *Index) PartSize() int  { return ix.partSize }
func (ix *Index) ChunkSize() int { return ix.chunkSize }
func (ix *Index) Buckets() int   { return len(ix.buckets) }

// Positions is the total number of offsets stored across all buckets.
func (ix *Index) Positions() int { return ix.positions }
