package cache

import (
	"encoding/binary"
	"fmt"

	"genomecmp-core/fasta"
	"genomecmp-core/index"

	"genomecmp/internal/codec"
)

type sequenceRecord struct {
	Length uint64 `cbor:"1,keyasint"`
	Codes  []byte `cbor:"2,keyasint"`
}

// indexRecord stores the bucket table in CSR form: Sizes holds one
// little-endian uint32 per bucket, Offsets the concatenated buckets.
type indexRecord struct {
	PartSize  uint32 `cbor:"1,keyasint"`
	ChunkSize uint32 `cbor:"2,keyasint"`
	Positions uint64 `cbor:"3,keyasint"`
	Sizes     []byte `cbor:"4,keyasint"`
	Offsets   []byte `cbor:"5,keyasint"`
}

func encodeSequence(seq fasta.Sequence) ([]byte, error) {
	return codec.Marshal(sequenceRecord{Length: uint64(len(seq)), Codes: []byte(seq)})
}

func decodeSequence(payload []byte) (fasta.Sequence, error) {
	var rec sequenceRecord
	if err := codec.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	if uint64(len(rec.Codes)) != rec.Length {
		return nil, fmt.Errorf("sequence record: %d codes, header says %d", len(rec.Codes), rec.Length)
	}
	for i, c := range rec.Codes {
		if int(c) >= fasta.AlphabetSize {
			return nil, fmt.Errorf("sequence record: invalid code %d at %d", c, i)
		}
	}
	return fasta.Sequence(rec.Codes), nil
}

func encodeIndex(ix *index.Index) ([]byte, error) {
	sizes := make([]byte, 4*ix.Buckets())
	offsets := make([]byte, 0, 4*ix.Positions())
	for k := 0; k < ix.Buckets(); k++ {
		b := ix.Bucket(k)
		binary.LittleEndian.PutUint32(sizes[4*k:], uint32(len(b)))
		for _, off := range b {
			offsets = binary.LittleEndian.AppendUint32(offsets, off)
		}
	}
	return codec.Marshal(indexRecord{
		PartSize:  uint32(ix.PartSize()),
		ChunkSize: uint32(ix.ChunkSize()),
		Positions: uint64(ix.Positions()),
		Sizes:     sizes,
		Offsets:   offsets,
	})
}

func decodeIndex(payload []byte) (*index.Index, error) {
	var rec indexRecord
	if err := codec.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	if rec.PartSize < 1 || rec.PartSize > index.MaxPartSize {
		return nil, fmt.Errorf("index record: part size %d out of range", rec.PartSize)
	}
	n := index.TableSize(int(rec.PartSize))
	if len(rec.Sizes) != 4*n {
		return nil, fmt.Errorf("index record: %d size bytes for %d buckets", len(rec.Sizes), n)
	}
	if len(rec.Offsets)%4 != 0 || uint64(len(rec.Offsets)/4) != rec.Positions {
		return nil, fmt.Errorf("index record: %d offset bytes for %d positions", len(rec.Offsets), rec.Positions)
	}

	// One backing array for every bucket keeps the table contiguous.
	all := make([]uint32, rec.Positions)
	for i := range all {
		all[i] = binary.LittleEndian.Uint32(rec.Offsets[4*i:])
	}
	buckets := make([][]uint32, n)
	pos := uint64(0)
	for k := range buckets {
		size := uint64(binary.LittleEndian.Uint32(rec.Sizes[4*k:]))
		if pos+size > rec.Positions {
			return nil, fmt.Errorf("index record: bucket %d overruns offsets", k)
		}
		if size > 0 {
			buckets[k] = all[pos : pos+size : pos+size]
		}
		pos += size
	}
	if pos != rec.Positions {
		return nil, fmt.Errorf("index record: buckets cover %d of %d positions", pos, rec.Positions)
	}
	return index.FromBuckets(int(rec.PartSize), int(rec.ChunkSize), buckets)
}
