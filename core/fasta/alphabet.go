// core/fasta/alphabet.go
package fasta

// Code is a nucleotide in the five-symbol alphabet.
type Code = byte

const (
	A Code = iota
	C
	G
	T
	N

	// AlphabetSize is the number of distinct codes; index keys are base-5.
	AlphabetSize = 5

	unknown Code = 0xff
)

// Sequence is an encoded genome: dense codes in file order. Values produced
// by this package are never mutated afterwards and may be shared freely.
type Sequence []Code

var (
	encodeTable = func() (t [256]Code) {
		for i := range t {
			t[i] = unknown
		}
		for code, pair := range [AlphabetSize]string{"Aa", "Cc", "Gg", "Tt", "Nn"} {
			for j := 0; j < len(pair); j++ {
				t[pair[j]] = Code(code)
			}
		}
		return t
	}()
	decodeTable = [AlphabetSize]byte{'A', 'C', 'G', 'T', 'N'}
)

// Decode returns the upper-case letter for c, or '?' for an invalid code.
func Decode(c Code) byte {
	if int(c) >= AlphabetSize {
		return '?'
	}
	return decodeTable[c]
}

// String renders the sequence back as ACGTN letters.
func (s Sequence) String() string {
	b := make([]byte, len(s))
	for i, c := range s {
		b[i] = Decode(c)
	}
	return string(b)
}

// Parse encodes a bare letter string (no FASTA headers), dropping
// unrecognized bytes. Mostly useful for literals in tests and tools.
func Parse(s string) Sequence {
	return Encode([]byte(s))
}
