// Package compare binds one query, one indexed target, and the match
// parameters into a read-only session.
package compare

import (
	"fmt"

	"genomecmp-core/fasta"
	"genomecmp-core/index"
	"genomecmp-core/match"
)

// Session is immutable after New and safe for concurrent Evaluate calls.
type Session struct {
	query  fasta.Sequence
	target fasta.Sequence
	index  *index.Index
	params match.Params
}

// New validates p against idx and the query length.
func New(query, target fasta.Sequence, idx *index.Index, p match.Params) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, fmt.Errorf("compare: nil index")
	}
	if idx.PartSize() != p.PartSize() || idx.ChunkSize() != p.ChunkSize {
		return nil, fmt.Errorf("compare: index built for part %d/chunk %d, params need part %d/chunk %d",
			idx.PartSize(), idx.ChunkSize(), p.PartSize(), p.ChunkSize)
	}
	if len(query) < p.ChunkSize {
		return nil, fmt.Errorf("compare: query length %d shorter than chunk size %d", len(query), p.ChunkSize)
	}
	return &Session{query: query, target: target, index: idx, params: p}, nil
}

func (s *Session) QueryLen() int        { return len(s.query) }
func (s *Session) TargetLen() int       { return len(s.target) }
func (s *Session) Params() match.Params { return s.params }

// MaxChunkStart is the largest valid argument to Evaluate.
func (s *Session) MaxChunkStart() int { return len(s.query) - s.params.ChunkSize }

func (s *Session) window(chunkStart int) []fasta.Code {
	if chunkStart < 0 || chunkStart > s.MaxChunkStart() {
		panic(fmt.Sprintf("compare: chunk start %d outside [0, %d]", chunkStart, s.MaxChunkStart()))
	}
	return s.query[chunkStart : chunkStart+s.params.ChunkSize]
}

// Evaluate reports whether query[chunkStart:chunkStart+ChunkSize] occurs in
// the target within MaxDifferences substitutions. chunkStart outside
// [0, MaxChunkStart()] panics.
func (s *Session) Evaluate(chunkStart int) bool {
	return match.Find(s.window(chunkStart), s.index, s.target, s.params.MaxDifferences)
}

// Locate is Evaluate plus the accepted candidate.
func (s *Session) Locate(chunkStart int) (match.Hit, bool) {
	return match.Locate(s.window(chunkStart), s.index, s.target, s.params.MaxDifferences)
}
