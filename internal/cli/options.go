// internal/cli/options.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"genomecmp/internal/config"
	"genomecmp/internal/writers"
)

// Kind selects which command-specific flags are registered.
type Kind int

const (
	KindRun Kind = iota
	KindServe
	KindIndex
)

// Options holds the parsed command line and the merged configuration.
type Options struct {
	ConfigPath string
	Config     *config.Config

	// Output (genomecmp only)
	Output   string
	Header   bool // true unless --no-header
	Progress bool // JSONL snapshots on stdout while sampling

	Quiet   bool
	Version bool
}

// flagValues are the raw flag targets. Only flags the user actually set
// (pflag Changed) are copied into the config.
type flagValues struct {
	queryName, queryPath string
	targets              []string
	chunkSize, maxDiff   int
	workers, interval    int
	samples              int
	seed                 uint64
	cacheDir             string
	seqComp, idxComp     string
	listen               string
	logFormat, logLevel  string
}

// NewFlagSet returns a FlagSet that reports errors to the caller instead
// of printing them.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// ParseArgs registers and parses the flags for kind, then merges defaults,
// the --config file and explicitly set flags, in that order.
func ParseArgs(fs *pflag.FlagSet, argv []string, kind Kind) (Options, error) {
	var (
		opt      Options
		v        flagValues
		help     bool
		noHeader bool
	)
	d := config.Default()

	fs.StringVarP(&opt.ConfigPath, "config", "c", "", "YAML configuration file")
	fs.StringVar(&v.queryPath, "query", "", "query genome FASTA (.gz ok, '-' for stdin)")
	fs.StringVar(&v.queryName, "query-name", d.Query.Name, "display name of the query genome")
	fs.StringArrayVarP(&v.targets, "target", "t", nil, "target genome as NAME=PATH (repeatable, up to 3)")
	fs.IntVar(&v.chunkSize, "chunk-size", d.ChunkSize, "query window length")
	fs.IntVarP(&v.maxDiff, "max-differences", "d", d.MaxDifferences, "max substitutions per window")
	fs.StringVar(&v.cacheDir, "cache-dir", d.CacheDir, "directory for cached sequences and indexes")
	fs.StringVar(&v.seqComp, "sequence-compression", d.Compression.Sequence, "sequence cache codec: none | lz4 | zstd | bg4_lz4")
	fs.StringVar(&v.idxComp, "index-compression", d.Compression.Index, "index cache codec: none | lz4 | zstd | bg4_lz4")

	if kind == KindRun || kind == KindServe {
		fs.IntVar(&v.workers, "workers", d.Workers, "sampling goroutines (0 = all CPUs)")
		fs.IntVar(&v.interval, "update-interval", d.UpdateInterval, "samples between progress updates")
		fs.Uint64Var(&v.seed, "seed", d.Seed, "random seed (0 = random)")
	}
	if kind == KindRun {
		fs.IntVarP(&v.samples, "samples", "n", d.Samples, "number of windows to sample")
		fs.StringVarP(&opt.Output, "output", "o", "text", "output format: "+strings.Join(writers.Formats(), " | "))
		fs.BoolVar(&opt.Progress, "progress", false, "stream JSONL snapshots to stdout while sampling")
		fs.BoolVar(&noHeader, "no-header", false, "suppress header line in text output")
	}
	if kind == KindServe {
		fs.StringVar(&v.listen, "listen", d.Listen, "HTTP listen address")
	}

	fs.StringVar(&v.logFormat, "log-format", d.LogFormat, "log format: text | json")
	fs.StringVar(&v.logLevel, "log-level", d.LogLevel, "log level: debug | info | warn | error")
	fs.BoolVarP(&opt.Quiet, "quiet", "q", false, "only log warnings and errors")
	fs.BoolVarP(&opt.Version, "version", "v", false, "print version and exit")
	fs.BoolVarP(&help, "help", "h", false, "show this help message")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	opt.Header = !noHeader
	if help {
		return opt, pflag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	if fs.NArg() > 0 {
		return opt, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := d
	if opt.ConfigPath != "" {
		if err := cfg.LoadFile(opt.ConfigPath); err != nil {
			return opt, err
		}
	}
	if err := merge(fs, &v, cfg); err != nil {
		return opt, err
	}
	if err := cfg.Validate(); err != nil {
		return opt, err
	}
	if kind == KindRun && !contains(writers.Formats(), opt.Output) {
		return opt, fmt.Errorf("invalid --output %q", opt.Output)
	}
	opt.Config = cfg
	return opt, nil
}

// merge copies every flag the user set over the file configuration.
func merge(fs *pflag.FlagSet, v *flagValues, cfg *config.Config) error {
	set := func(name string, apply func()) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	set("query", func() { cfg.Query.Path = v.queryPath })
	set("query-name", func() { cfg.Query.Name = v.queryName })
	set("chunk-size", func() { cfg.ChunkSize = v.chunkSize })
	set("max-differences", func() { cfg.MaxDifferences = v.maxDiff })
	set("cache-dir", func() { cfg.CacheDir = v.cacheDir })
	set("sequence-compression", func() { cfg.Compression.Sequence = v.seqComp })
	set("index-compression", func() { cfg.Compression.Index = v.idxComp })
	set("workers", func() { cfg.Workers = v.workers })
	set("update-interval", func() { cfg.UpdateInterval = v.interval })
	set("seed", func() { cfg.Seed = v.seed })
	set("samples", func() { cfg.Samples = v.samples })
	set("listen", func() { cfg.Listen = v.listen })
	set("log-format", func() { cfg.LogFormat = v.logFormat })
	set("log-level", func() { cfg.LogLevel = v.logLevel })

	if f := fs.Lookup("target"); f != nil && f.Changed {
		targets := make([]config.Genome, 0, len(v.targets))
		for _, arg := range v.targets {
			g, err := parseGenome(arg)
			if err != nil {
				return err
			}
			targets = append(targets, g)
		}
		cfg.Targets = targets
	}
	return nil
}

// parseGenome splits NAME=PATH.
func parseGenome(s string) (config.Genome, error) {
	name, path, ok := strings.Cut(s, "=")
	if !ok || name == "" || path == "" {
		return config.Genome{}, fmt.Errorf("--target must be NAME=PATH, got %q", s)
	}
	return config.Genome{Name: name, Path: path}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
