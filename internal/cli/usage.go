// internal/cli/usage.go
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"genomecmp/internal/version"
)

var summaries = map[Kind]string{
	KindRun:   "sample query windows and count which targets match approximately",
	KindServe: "serve live comparison counters over HTTP",
	KindIndex: "encode genomes and build target indexes into the cache",
}

var examples = map[Kind][]string{
	KindRun: {
		"genomecmp --query human.fa.gz -t Bonobo=bonobo.fa.gz -t Pig=pig.fa.gz -n 5000",
		"genomecmp --config genomecmp.yaml --seed 7 -o json",
		"genomecmp -c genomecmp.yaml --progress -o json | jq .total",
	},
	KindServe: {
		"genomecmp-serve --config genomecmp.yaml --listen :8080",
		"curl -N localhost:8080/api/events",
		"curl -X POST 'localhost:8080/api/run?samples=10000'",
	},
	KindIndex: {
		"genomecmp-index --config genomecmp.yaml",
		"genomecmp-index --query human.fa -t Bonobo=bonobo.fa --chunk-size 40 -d 5",
	},
}

// PrintUsage writes the help text for a command of kind to w.
func PrintUsage(w io.Writer, fs *pflag.FlagSet, kind Kind) error {
	if _, err := fmt.Fprintf(w, "%s: %s\n\nVersion: %s\n\nExamples:\n", fs.Name(), summaries[kind], version.Version); err != nil {
		return err
	}
	for _, ex := range examples[kind] {
		if _, err := fmt.Fprintf(w, "  %s\n", ex); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nUsage of %s:\n%s", fs.Name(), fs.FlagUsages())
	return err
}
