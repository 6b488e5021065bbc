package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// ErrIncompatible marks a cache blob that exists but cannot be used by
// this build: wrong magic, format version, or kind, a digest mismatch, or
// an undecodable payload. It is never repaired automatically.
var ErrIncompatible = errors.New("incompatible cache artifact")

// Kind tags the artifact stored in a blob.
type Kind uint8

const (
	KindSequence Kind = 1
	KindIndex    Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindIndex:
		return "index"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Blob header, little-endian:
//
//	[0:4]   magic "GCMP"
//	[4]     format version
//	[5]     kind
//	[6]     compression tag
//	[7]     reserved (0)
//	[8:16]  uncompressed payload size
//	[16:48] BLAKE3-256 of the uncompressed payload
const (
	formatVersion = 1
	headerSize    = 48
)

var magic = [4]byte{'G', 'C', 'M', 'P'}

type header struct {
	kind        Kind
	compression CompressionTag
	size        uint64
	digest      [32]byte
}

func (h header) marshal() []byte {
	b := make([]byte, headerSize)
	copy(b[0:4], magic[:])
	b[4] = formatVersion
	b[5] = byte(h.kind)
	b[6] = byte(h.compression)
	binary.LittleEndian.PutUint64(b[8:16], h.size)
	copy(b[16:48], h.digest[:])
	return b
}

func parseHeader(b []byte) (header, error) {
	var h header
	if len(b) < headerSize {
		return h, fmt.Errorf("%w: truncated header (%d bytes)", ErrIncompatible, len(b))
	}
	if [4]byte(b[0:4]) != magic {
		return h, fmt.Errorf("%w: bad magic %q", ErrIncompatible, b[0:4])
	}
	if b[4] != formatVersion {
		return h, fmt.Errorf("%w: format version %d, want %d", ErrIncompatible, b[4], formatVersion)
	}
	h.kind = Kind(b[5])
	h.compression = CompressionTag(b[6])
	h.size = binary.LittleEndian.Uint64(b[8:16])
	copy(h.digest[:], b[16:48])
	return h, nil
}

// writeBlob compresses payload and writes header+body atomically to path.
func writeBlob(path string, kind Kind, tag CompressionTag, payload []byte) (CompressionTag, error) {
	body, used, err := compress(payload, tag)
	if err != nil {
		return 0, err
	}
	h := header{kind: kind, compression: used, size: uint64(len(payload)), digest: blake3.Sum256(payload)}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := tmp.Write(h.marshal()); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, err
	}
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return 0, err
	}
	return used, nil
}

// readBlob returns the verified, uncompressed payload stored at path.
func readBlob(path string, want Kind) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	hb := make([]byte, headerSize)
	if n, err := io.ReadFull(fh, hb); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w: truncated header (%d bytes)", path, ErrIncompatible, n)
		}
		return nil, err
	}
	h, err := parseHeader(hb)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if h.kind != want {
		return nil, fmt.Errorf("%s: %w: holds %s, want %s", path, ErrIncompatible, h.kind, want)
	}
	body, err := io.ReadAll(fh)
	if err != nil {
		return nil, err
	}
	if err := checkSize(h.compression, len(body), h.size); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrIncompatible, err)
	}
	payload, err := decompress(body, h.compression, int(h.size))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrIncompatible, err)
	}
	if blake3.Sum256(payload) != h.digest {
		return nil, fmt.Errorf("%s: %w: digest mismatch", path, ErrIncompatible)
	}
	return payload, nil
}
