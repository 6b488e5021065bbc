package appcore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genomecmp/internal/cache"
	"genomecmp/internal/config"
	"genomecmp/internal/simulation"
)

func writeFA(t *testing.T, dir, name, seq string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(">"+name+"\n"+seq+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	seq := strings.Repeat("ACGTTGCAAGGCT", 8)
	cfg := config.Default()
	cfg.ChunkSize = 12
	cfg.MaxDifferences = 2
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.Query = config.Genome{Name: "Human", Path: writeFA(t, dir, "human.fa", seq)}
	cfg.Targets = []config.Genome{
		{Name: "Same", Path: writeFA(t, dir, "same.fa", seq)},
		{Name: "Poly", Path: writeFA(t, dir, "poly.fa", strings.Repeat("A", 60))},
	}
	return cfg
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBuildSimulation(t *testing.T) {
	cfg := testConfig(t)
	b, err := BuildSimulation(context.Background(), cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Simulation.TargetNames(); len(got) != 2 || got[0] != "Same" {
		t.Fatalf("targets %v", got)
	}
	if b.Lengths["Human"] != 104 || b.Lengths["Poly"] != 60 {
		t.Fatalf("lengths %v", b.Lengths)
	}
	// query sequence + (sequence, index) per target
	if len(b.Artifacts) != 5 {
		t.Fatalf("artifacts %+v", b.Artifacts)
	}
	for _, a := range b.Artifacts {
		if _, err := os.Stat(a.Path); err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
	}
	if err := b.Simulation.Run(context.Background(), simulation.RunOptions{Samples: 100, Workers: 2, Seed: 1}, nil); err != nil {
		t.Fatal(err)
	}
	st := b.Simulation.Counters().Snapshot()
	if st.Counts[simulation.Target1] != 100 {
		t.Fatalf("identical target should match every window: %+v", st.Counts)
	}
}

func TestBuildSimulationUsesCache(t *testing.T) {
	cfg := testConfig(t)
	if _, err := BuildSimulation(context.Background(), cfg, quiet()); err != nil {
		t.Fatal(err)
	}
	// Sources are no longer needed once cached.
	for _, g := range cfg.Targets {
		if err := os.Remove(g.Path); err != nil {
			t.Fatal(err)
		}
	}
	b, err := BuildSimulation(context.Background(), cfg, quiet())
	if err != nil {
		t.Fatalf("rebuild from cache: %v", err)
	}
	if b.Lengths["Same"] != 104 {
		t.Fatalf("lengths %v", b.Lengths)
	}
	idx := cache.IndexKey(cfg.Targets[0].Path, cfg.ChunkSize, cfg.MaxDifferences)
	if _, err := os.Stat(filepath.Join(cfg.CacheDir, idx.Name)); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSimulationErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Targets[1].Path = filepath.Join(t.TempDir(), "missing.fa")
	if _, err := BuildSimulation(context.Background(), cfg, quiet()); err == nil || !strings.Contains(err.Error(), "genome Poly") {
		t.Fatalf("missing target err=%v", err)
	}

	cfg = testConfig(t)
	cfg.ChunkSize = 200
	cfg.MaxDifferences = 20
	if _, err := BuildSimulation(context.Background(), cfg, quiet()); err == nil {
		t.Fatal("expected error for query shorter than chunk")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildSimulation(ctx, testConfig(t), quiet()); err == nil {
		t.Fatal("expected cancellation error")
	}
}
