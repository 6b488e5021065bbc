// core/fasta/encode.go
package fasta

import (
	"fmt"
	"io"
)

// encoder carries the header-skip state across buffer boundaries.
//
// Encoding is lossy on purpose: header lines (from '>' to the next '\n')
// are skipped, '\r' is always discarded, and any byte outside
// A/C/G/T/N (either case) is dropped without leaving a placeholder.
type encoder struct {
	skip bool
	out  Sequence
}

func (e *encoder) write(p []byte) {
	for _, b := range p {
		switch b {
		case '>':
			e.skip = true
		case '\n':
			e.skip = false
		case '\r':
		default:
			if e.skip {
				continue
			}
			if c := encodeTable[b]; c != unknown {
				e.out = append(e.out, c)
			}
		}
	}
}

// Encode converts raw FASTA bytes into a Sequence.
func Encode(data []byte) Sequence {
	e := encoder{out: make(Sequence, 0, len(data))}
	e.write(data)
	return e.out
}

// EncodeReader streams r through the encoder.
func EncodeReader(r io.Reader) (Sequence, error) {
	e := encoder{out: make(Sequence, 0, 1<<20)}
	buf := make([]byte, 1<<20)
	for {
		n, err := r.Read(buf)
		e.write(buf[:n])
		if err == io.EOF {
			return e.out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// EncodeFile reads and encodes the FASTA file at path ("-" = stdin,
// gzip detected automatically). A missing or unreadable file is an error.
func EncodeFile(path string) (Sequence, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	seq, err := EncodeReader(rc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return seq, nil
}
