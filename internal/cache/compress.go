package cache

import (
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies how a blob payload is compressed. Values are
// stored in blob headers; changing them breaks existing caches.
type CompressionTag uint8

const (
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is LZ4 block compression.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd is zstd at the default level. Encoded sequences
	// (one code per byte, five symbols) compress well with it.
	CompressionZstd CompressionTag = 2

	// CompressionBG4LZ4 groups bytes by position within 4-byte words
	// before LZ4. Index offsets are ascending uint32s, so their high
	// bytes cluster once grouped.
	CompressionBG4LZ4 CompressionTag = 3
)

// maxLZ4Input is the largest block LZ4 accepts.
const maxLZ4Input = 0x7E000000

// maxLZ4Ratio bounds how far one LZ4 block byte can expand.
const maxLZ4Ratio = 255

// zstdHintRatio caps the output buffer preallocated from a header size.
const zstdHintRatio = 16

var errIncompressible = errors.New("payload is incompressible")

func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionBG4LZ4:
		return "bg4_lz4"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses the names produced by String.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	case "bg4_lz4":
		return CompressionBG4LZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns the payload encoded with tag, or the payload itself and
// CompressionNone when tag cannot shrink it.
func compress(data []byte, tag CompressionTag) ([]byte, CompressionTag, error) {
	var (
		out []byte
		err error
	)
	switch tag {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		out, err = compressLZ4(data)
	case CompressionZstd:
		out, err = compressZstd(data)
	case CompressionBG4LZ4:
		out, err = compressLZ4(bg4Transpose(data))
	default:
		return nil, 0, fmt.Errorf("unsupported compression tag: %d", tag)
	}
	if errors.Is(err, errIncompressible) {
		return data, CompressionNone, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return out, tag, nil
}

// checkSize rejects a header size that no body of bodyLen bytes could
// decompress to under tag.
func checkSize(tag CompressionTag, bodyLen int, size uint64) error {
	if size > math.MaxInt {
		return fmt.Errorf("payload size %d out of range", size)
	}
	switch tag {
	case CompressionNone:
		if size != uint64(bodyLen) {
			return fmt.Errorf("uncompressed payload: size %d does not match expected %d", bodyLen, size)
		}
	case CompressionLZ4, CompressionBG4LZ4:
		if size > maxLZ4Input || size > uint64(bodyLen)*maxLZ4Ratio {
			return fmt.Errorf("%s payload: size %d implausible for %d body bytes", tag, size, bodyLen)
		}
	}
	return nil
}

// decompress reverses compress. size is the exact uncompressed length.
func decompress(data []byte, tag CompressionTag, size int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(data) != size {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d", len(data), size)
		}
		return data, nil
	case CompressionLZ4:
		return decompressLZ4(data, size)
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, min(size, zstdHintRatio*len(data))))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), size)
		}
		return out, nil
	case CompressionBG4LZ4:
		out, err := decompressLZ4(data, size)
		if err != nil {
			return nil, err
		}
		return bg4Untranspose(out), nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data) > maxLZ4Input {
		return nil, errIncompressible
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 || n >= len(data) {
		return nil, errIncompressible
	}
	return dst[:n], nil
}

func decompressLZ4(data []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, size)
	}
	return dst, nil
}

func compressZstd(data []byte) ([]byte, error) {
	out := zstdEncoder.EncodeAll(data, nil)
	if len(out) >= len(data) {
		return nil, errIncompressible
	}
	return out, nil
}

// bg4Transpose lays out byte 0 of every 4-byte group, then byte 1, and so
// on. Trailing bytes that do not fill a group are copied unchanged.
func bg4Transpose(data []byte) []byte {
	groups := len(data) / 4
	out := make([]byte, len(data))
	for i := 0; i < groups; i++ {
		for b := 0; b < 4; b++ {
			out[b*groups+i] = data[i*4+b]
		}
	}
	copy(out[groups*4:], data[groups*4:])
	return out
}

func bg4Untranspose(data []byte) []byte {
	groups := len(data) / 4
	out := make([]byte, len(data))
	for i := 0; i < groups; i++ {
		for b := 0; b < 4; b++ {
			out[i*4+b] = data[b*groups+i]
		}
	}
	copy(out[groups*4:], data[groups*4:])
	return out
}
