// Package config loads the YAML configuration shared by the genomecmp
// commands.
//
// A file is optional. Commands start from Default, overlay the file given
// by --config, then apply any flags set on the command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"genomecmp-core/index"
	"genomecmp-core/match"
	"genomecmp/internal/cache"
)

// MaxTargets mirrors the number of overlap categories a run can report.
const MaxTargets = 3

// Config is the complete configuration for a comparison run or server.
type Config struct {
	// ChunkSize is the query window length c.
	ChunkSize int `yaml:"chunk_size"`

	// MaxDifferences is the substitution budget D per window.
	MaxDifferences int `yaml:"max_differences"`

	// Workers is the number of sampling goroutines. 0 uses every CPU.
	Workers int `yaml:"workers"`

	// UpdateInterval is how many samples pass between progress reports.
	UpdateInterval int `yaml:"update_interval"`

	// Samples is the number of windows drawn by a CLI run. 0 samples until
	// interrupted.
	Samples int `yaml:"samples"`

	// Seed makes runs reproducible. 0 picks a random seed.
	Seed uint64 `yaml:"seed"`

	// Query is the genome windows are drawn from.
	Query Genome `yaml:"query"`

	// Targets are the genomes each window is searched in (1 to 3).
	Targets []Genome `yaml:"targets"`

	// CacheDir holds encoded sequences and indexes between runs.
	CacheDir string `yaml:"cache_dir"`

	Compression Compression `yaml:"compression"`

	// Listen is the HTTP address used by genomecmp-serve.
	Listen string `yaml:"listen"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Genome names a FASTA (optionally gzipped) input.
type Genome struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Compression selects the cache codec per artifact kind.
// Values: none, lz4, zstd, bg4_lz4.
type Compression struct {
	Sequence string `yaml:"sequence"`
	Index    string `yaml:"index"`
}

// Default returns the configuration used before any file or flag applies.
func Default() *Config {
	return &Config{
		ChunkSize:      42,
		MaxDifferences: 5,
		Workers:        0,
		UpdateInterval: 100,
		Samples:        10000,
		Query:          Genome{Name: "Human"},
		CacheDir:       "cache",
		Compression: Compression{
			Sequence: cache.CompressionZstd.String(),
			Index:    cache.CompressionBG4LZ4.String(),
		},
		Listen:    "127.0.0.1:8080",
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// Load reads path over Default. Fields missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Save writes c as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Params returns the match parameters.
func (c *Config) Params() match.Params {
	return match.Params{ChunkSize: c.ChunkSize, MaxDifferences: c.MaxDifferences}
}

// SequenceCompression parses Compression.Sequence.
func (c *Config) SequenceCompression() (cache.CompressionTag, error) {
	return cache.ParseCompressionTag(c.Compression.Sequence)
}

// IndexCompression parses Compression.Index.
func (c *Config) IndexCompression() (cache.CompressionTag, error) {
	return cache.ParseCompressionTag(c.Compression.Index)
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	} else if s := c.Params().PartSize(); s > index.MaxPartSize {
		errs = append(errs, fmt.Errorf("seed length %d exceeds %d; raise max_differences or lower chunk_size", s, index.MaxPartSize))
	}
	if c.Query.Path == "" {
		errs = append(errs, errors.New("query.path is required"))
	}
	if c.Query.Name == "" {
		errs = append(errs, errors.New("query.name is required"))
	}
	if n := len(c.Targets); n < 1 || n > MaxTargets {
		errs = append(errs, fmt.Errorf("need 1..%d targets, got %d", MaxTargets, n))
	}
	seen := map[string]bool{c.Query.Name: true}
	for i, t := range c.Targets {
		if t.Path == "" {
			errs = append(errs, fmt.Errorf("targets[%d].path is required", i))
		}
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("targets[%d].name is required", i))
		} else if seen[t.Name] {
			errs = append(errs, fmt.Errorf("duplicate genome name %q", t.Name))
		}
		seen[t.Name] = true
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.UpdateInterval < 1 {
		errs = append(errs, fmt.Errorf("update_interval must be >= 1, got %d", c.UpdateInterval))
	}
	if c.Samples < 0 {
		errs = append(errs, fmt.Errorf("samples must be >= 0, got %d", c.Samples))
	}
	if c.CacheDir == "" {
		errs = append(errs, errors.New("cache_dir is required"))
	}
	if _, err := c.SequenceCompression(); err != nil {
		errs = append(errs, fmt.Errorf("compression.sequence: %w", err))
	}
	if _, err := c.IndexCompression(); err != nil {
		errs = append(errs, fmt.Errorf("compression.index: %w", err))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
