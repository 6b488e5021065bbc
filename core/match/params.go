// core/match/params.go
package match

import (
	"errors"
	"fmt"
)

// ErrInvalidParams wraps every Params validation failure.
var ErrInvalidParams = errors.New("invalid match parameters")

// Params controls approximate matching.
type Params struct {
	ChunkSize      int // window length compared between query and target
	MaxDifferences int // inclusive Hamming-distance budget
}

// PartSize is the seed length: ChunkSize split into MaxDifferences+1 seeds.
func (p Params) PartSize() int {
	if p.MaxDifferences < 0 {
		return 0
	}
	return p.ChunkSize / (p.MaxDifferences + 1)
}

// Validate checks that the MaxDifferences+1 seeds fit in one chunk.
func (p Params) Validate() error {
	switch {
	case p.ChunkSize < 1:
		return fmt.Errorf("%w: chunk size must be ≥ 1 (got %d)", ErrInvalidParams, p.ChunkSize)
	case p.MaxDifferences < 0:
		return fmt.Errorf("%w: max differences must be ≥ 0 (got %d)", ErrInvalidParams, p.MaxDifferences)
	case p.PartSize() < 1:
		return fmt.Errorf("%w: chunk size %d too small for %d differences", ErrInvalidParams, p.ChunkSize, p.MaxDifferences)
	case p.PartSize()*(p.MaxDifferences+1) > p.ChunkSize:
		return fmt.Errorf("%w: %d seeds of %d exceed chunk size %d", ErrInvalidParams, p.MaxDifferences+1, p.PartSize(), p.ChunkSize)
	}
	return nil
}
