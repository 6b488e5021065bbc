// Package cache persists encoded sequences and bucket indexes across runs.
//
// Artifacts are keyed by the source file's base name plus an artifact tag
// (and, for indexes, the chunk size and difference budget). A key present
// on disk is trusted as-is: there is no invalidation when a source file
// changes, and a blob this build cannot read fails with ErrIncompatible
// rather than being rebuilt.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"genomecmp-core/fasta"
	"genomecmp-core/index"
)

// Key names one artifact file inside the cache directory.
type Key struct {
	Name string
	Kind Kind
}

func stem(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SequenceKey is the key of the encoded form of the FASTA file at path.
func SequenceKey(path string) Key {
	return Key{Name: stem(path) + "_genome.bin", Kind: KindSequence}
}

// IndexKey is the key of the index over the FASTA file at path built for
// the given chunk size and difference budget.
func IndexKey(path string, chunkSize, maxDifferences int) Key {
	return Key{Name: fmt.Sprintf("%s_index_%d_%d.bin", stem(path), chunkSize, maxDifferences), Kind: KindIndex}
}

// Options configures a Store. Zero values select zstd for sequences,
// bg4_lz4 for indexes and slog.Default for logging.
type Options struct {
	SequenceCompression *CompressionTag
	IndexCompression    *CompressionTag
	Logger              *slog.Logger
}

// Store is a directory of artifact blobs.
type Store struct {
	dir    string
	seqTag CompressionTag
	idxTag CompressionTag
	log    *slog.Logger
}

// Open creates dir if needed and returns a Store rooted there.
func Open(dir string, o Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	s := &Store{dir: dir, seqTag: CompressionZstd, idxTag: CompressionBG4LZ4, log: o.Logger}
	if o.SequenceCompression != nil {
		s.seqTag = *o.SequenceCompression
	}
	if o.IndexCompression != nil {
		s.idxTag = *o.IndexCompression
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

// Path returns the file backing k.
func (s *Store) Path(k Key) string { return filepath.Join(s.dir, k.Name) }

// Has reports whether a blob for k exists.
func (s *Store) Has(k Key) (bool, error) {
	_, err := os.Stat(s.Path(k))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// LoadOrBuildSequence returns the cached encoding of the FASTA file at
// path, encoding and persisting it on a miss.
func (s *Store) LoadOrBuildSequence(path string) (fasta.Sequence, error) {
	k := SequenceKey(path)
	ok, err := s.Has(k)
	if err != nil {
		return nil, err
	}
	if ok {
		s.log.Info("loading cached sequence", "source", path, "blob", s.Path(k))
		payload, err := readBlob(s.Path(k), KindSequence)
		if err != nil {
			return nil, err
		}
		seq, err := decodeSequence(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", s.Path(k), ErrIncompatible, err)
		}
		return seq, nil
	}

	s.log.Info("encoding sequence", "source", path)
	t0 := time.Now()
	seq, err := fasta.EncodeFile(path)
	if err != nil {
		return nil, err
	}
	s.log.Info("encoded sequence", "source", path, "length", humanize.Comma(int64(len(seq))), "elapsed", time.Since(t0).Round(time.Millisecond))
	payload, err := encodeSequence(seq)
	if err != nil {
		return nil, fmt.Errorf("encode sequence artifact: %w", err)
	}
	if err := s.persist(k, s.seqTag, payload); err != nil {
		return nil, err
	}
	return seq, nil
}

// LoadOrBuildIndex returns the cached index stored under k, building it
// over seq and persisting it on a miss. A cached index built with a
// different part or chunk size is reported as ErrIncompatible.
func (s *Store) LoadOrBuildIndex(seq fasta.Sequence, partSize, chunkSize int, k Key) (*index.Index, error) {
	if k.Kind != KindIndex {
		return nil, fmt.Errorf("cache: key %s is a %s key", k.Name, k.Kind)
	}
	ok, err := s.Has(k)
	if err != nil {
		return nil, err
	}
	if ok {
		s.log.Info("loading cached index", "blob", s.Path(k))
		payload, err := readBlob(s.Path(k), KindIndex)
		if err != nil {
			return nil, err
		}
		ix, err := decodeIndex(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", s.Path(k), ErrIncompatible, err)
		}
		if ix.PartSize() != partSize || ix.ChunkSize() != chunkSize {
			return nil, fmt.Errorf("%s: %w: built for part %d/chunk %d, want part %d/chunk %d",
				s.Path(k), ErrIncompatible, ix.PartSize(), ix.ChunkSize(), partSize, chunkSize)
		}
		return ix, nil
	}

	s.log.Info("building index", "blob", k.Name, "length", humanize.Comma(int64(len(seq))),
		"part_size", partSize, "chunk_size", chunkSize, "buckets", humanize.Comma(int64(index.TableSize(partSize))))
	t0 := time.Now()
	nextPct := 10
	ix, err := index.Build(seq, partSize, chunkSize, func(done, total int) {
		if pct := done * 100 / max(total, 1); pct >= nextPct {
			s.log.Info("indexing", "blob", k.Name, "percent", pct)
			nextPct = pct/10*10 + 10
		}
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("index built", "blob", k.Name, "positions", humanize.Comma(int64(ix.Positions())), "elapsed", time.Since(t0).Round(time.Millisecond))
	payload, err := encodeIndex(ix)
	if err != nil {
		return nil, fmt.Errorf("encode index artifact: %w", err)
	}
	if err := s.persist(k, s.idxTag, payload); err != nil {
		return nil, err
	}
	return ix, nil
}

func (s *Store) persist(k Key, tag CompressionTag, payload []byte) error {
	used, err := writeBlob(s.Path(k), k.Kind, tag, payload)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.Path(k), err)
	}
	s.log.Info("cached artifact", "blob", s.Path(k), "kind", k.Kind, "compression", used,
		"payload", humanize.Bytes(uint64(len(payload))))
	return nil
}
