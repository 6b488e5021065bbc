package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genomecmp-core/match"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Query.Path = "human.fa"
	cfg.Targets = []Genome{{Name: "Bonobo", Path: "bonobo.fa.gz"}}
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ChunkSize != 42 || cfg.MaxDifferences != 5 {
		t.Errorf("expected chunk=42 D=5, got %d %d", cfg.ChunkSize, cfg.MaxDifferences)
	}
	if cfg.UpdateInterval != 100 || cfg.Samples != 10000 {
		t.Errorf("expected update=100 samples=10000, got %d %d", cfg.UpdateInterval, cfg.Samples)
	}
	if cfg.CacheDir != "cache" || cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("unexpected cache/listen %q %q", cfg.CacheDir, cfg.Listen)
	}
	if got := cfg.Params().PartSize(); got != 7 {
		t.Errorf("part size %d want 7", got)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genomecmp.yaml")
	content := `
chunk_size: 40
query:
  name: Human
  path: genomes/human.fa.gz
targets:
  - name: Bonobo
    path: genomes/bonobo.fa.gz
  - name: Pig
    path: genomes/pig.fa.gz
compression:
  index: lz4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ChunkSize != 40 || cfg.MaxDifferences != 5 {
		t.Errorf("chunk=%d D=%d", cfg.ChunkSize, cfg.MaxDifferences)
	}
	if len(cfg.Targets) != 2 || cfg.Targets[1].Name != "Pig" {
		t.Errorf("targets %+v", cfg.Targets)
	}
	if cfg.Compression.Index != "lz4" || cfg.Compression.Sequence != "zstd" {
		t.Errorf("compression %+v", cfg.Compression)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err=%v", err)
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("chunk_size: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("bad yaml err=%v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Seed = 7
	path := filepath.Join(t.TempDir(), "sub", "out.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Seed != 7 || back.Query != cfg.Query || len(back.Targets) != 1 || back.Targets[0] != cfg.Targets[0] {
		t.Fatalf("round trip %+v", back)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no query", func(c *Config) { c.Query.Path = "" }, "query.path"},
		{"no targets", func(c *Config) { c.Targets = nil }, "need 1..3 targets"},
		{"four targets", func(c *Config) {
			c.Targets = []Genome{{"a", "a"}, {"b", "b"}, {"c", "c"}, {"d", "d"}}
		}, "need 1..3 targets"},
		{"duplicate", func(c *Config) { c.Targets = append(c.Targets, Genome{"Bonobo", "x"}) }, "duplicate"},
		{"bad compression", func(c *Config) { c.Compression.Index = "brotli" }, "compression.index"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"long seed", func(c *Config) { c.ChunkSize = 100; c.MaxDifferences = 1 }, "seed length"},
		{"interval", func(c *Config) { c.UpdateInterval = 0 }, "update_interval"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want %q", err, tc.want)
			}
		})
	}
}

func TestValidateInvalidParams(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkSize = 3
	if err := cfg.Validate(); !errors.Is(err, match.ErrInvalidParams) {
		t.Fatalf("err=%v want ErrInvalidParams", err)
	}
}
