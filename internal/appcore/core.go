// internal/appcore/core.go
package appcore

import (
	"context"
	"fmt"
	"log/slog"

	"genomecmp-core/compare"
	"genomecmp-core/fasta"
	"genomecmp-core/index"
	"genomecmp/internal/cache"
	"genomecmp/internal/config"
	"genomecmp/internal/simulation"
)

// StdinPath reads a genome from standard input. Such inputs bypass the
// cache since they have no stable name.
const StdinPath = "-"

// Artifact is one cache entry touched while building.
type Artifact struct {
	Genome string
	Kind   cache.Kind
	Path   string
}

// Built is everything a command needs after construction.
type Built struct {
	Simulation *simulation.Simulation
	Lengths    map[string]int // encoded length per genome name
	Artifacts  []Artifact
}

// BuildSimulation encodes the query, loads or builds every target's
// sequence and index through the cache, and wires one comparison session
// per target into a Simulation. ctx is checked between genomes.
func BuildSimulation(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Built, error) {
	seqTag, err := cfg.SequenceCompression()
	if err != nil {
		return nil, err
	}
	idxTag, err := cfg.IndexCompression()
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(cfg.CacheDir, cache.Options{
		SequenceCompression: &seqTag,
		IndexCompression:    &idxTag,
		Logger:              logger,
	})
	if err != nil {
		return nil, err
	}

	b := &Built{Lengths: make(map[string]int, len(cfg.Targets)+1)}
	p := cfg.Params()

	query, err := b.sequence(store, cfg.Query)
	if err != nil {
		return nil, err
	}
	if len(query) < p.ChunkSize {
		return nil, fmt.Errorf("query %s: %d bases is shorter than chunk size %d", cfg.Query.Name, len(query), p.ChunkSize)
	}

	targets := make([]simulation.Target, 0, len(cfg.Targets))
	for _, g := range cfg.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq, err := b.sequence(store, g)
		if err != nil {
			return nil, err
		}
		idx, err := b.index(store, g, seq, cfg)
		if err != nil {
			return nil, err
		}
		sess, err := compare.New(query, seq, idx, p)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", g.Name, err)
		}
		targets = append(targets, simulation.Target{Name: g.Name, Session: sess})
	}

	b.Simulation, err = simulation.New(targets, nil)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Built) sequence(store *cache.Store, g config.Genome) (fasta.Sequence, error) {
	var (
		seq fasta.Sequence
		err error
	)
	if g.Path == StdinPath {
		seq, err = fasta.EncodeFile(g.Path)
	} else {
		seq, err = store.LoadOrBuildSequence(g.Path)
		k := cache.SequenceKey(g.Path)
		b.Artifacts = append(b.Artifacts, Artifact{Genome: g.Name, Kind: k.Kind, Path: store.Path(k)})
	}
	if err != nil {
		return nil, fmt.Errorf("genome %s: %w", g.Name, err)
	}
	b.Lengths[g.Name] = len(seq)
	return seq, nil
}

func (b *Built) index(store *cache.Store, g config.Genome, seq fasta.Sequence, cfg *config.Config) (*index.Index, error) {
	p := cfg.Params()
	if g.Path == StdinPath {
		idx, err := index.Build(seq, p.PartSize(), p.ChunkSize, nil)
		if err != nil {
			return nil, fmt.Errorf("genome %s: %w", g.Name, err)
		}
		return idx, nil
	}
	k := cache.IndexKey(g.Path, p.ChunkSize, p.MaxDifferences)
	idx, err := store.LoadOrBuildIndex(seq, p.PartSize(), p.ChunkSize, k)
	if err != nil {
		return nil, fmt.Errorf("genome %s: %w", g.Name, err)
	}
	b.Artifacts = append(b.Artifacts, Artifact{Genome: g.Name, Kind: k.Kind, Path: store.Path(k)})
	return idx, nil
}
