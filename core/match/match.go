// core/match/match.go
package match

import (
	"fmt"

	"genomecmp-core/fasta"
	"genomecmp-core/index"
)

// Hit describes the accepted candidate window.
type Hit struct {
	Start    int // chunk start in the target
	Seed     int // index of the seed that produced the candidate
	Distance int // Hamming distance between query and target window
}

// Hamming counts position-wise mismatches. a and b must be the same length.
func Hamming(a, b []fasta.Code) int {
	if len(a) != len(b) {
		panic(fmt.Sprintf("match: hamming of unequal lengths %d and %d", len(a), len(b)))
	}
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// Locate searches target for a window within maxDiff substitutions of
// query, using the pigeonhole principle: query is cut into maxDiff+1
// disjoint seeds of idx.PartSize() codes, at least one of which must
// match a true hit exactly. Seeds are tried in order and candidates in
// ascending target order; the first window that verifies is returned.
//
// A seed hit implying a chunk start before 0 is tested at 0 instead
// (saturating, never wrapping). Seed occurrences past the last indexed
// offset are invisible, so a true match in the final chunkSize-partSize
// codes whose only intact seed is not the first can be missed.
func Locate(query []fasta.Code, idx *index.Index, target fasta.Sequence, maxDiff int) (Hit, bool) {
	s := idx.PartSize()
	c := len(query)
	if c < (maxDiff+1)*s {
		panic(fmt.Sprintf("match: query length %d cannot hold %d seeds of %d", c, maxDiff+1, s))
	}
	for j := 0; j <= maxDiff; j++ {
		for _, pos := range idx.Lookup(query[j*s : (j+1)*s]) {
			start := int(pos) - j*s
			if start < 0 {
				start = 0
			}
			end := min(start+c, len(target))
			if end-start != c {
				continue
			}
			if d := Hamming(query, target[start:end]); d <= maxDiff {
				return Hit{Start: start, Seed: j, Distance: d}, true
			}
		}
	}
	return Hit{}, false
}

// Find reports whether query occurs in target within maxDiff substitutions.
func Find(query []fasta.Code, idx *index.Index, target fasta.Sequence, maxDiff int) bool {
	_, ok := Locate(query, idx, target, maxDiff)
	return ok
}
