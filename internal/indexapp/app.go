// internal/indexapp/app.go
package indexapp

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"genomecmp/internal/appcore"
	"genomecmp/internal/appshell"
	"genomecmp/internal/cli"
	"genomecmp/internal/cmdutil"
	"genomecmp/internal/writers"
)

// RunContext warms the cache for the query and every target, then prints
// one line per artifact: genome, kind, path.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("genomecmp-index")

	opts, err := cli.ParseArgs(fs, argv, cli.KindIndex)
	if code, done := cmdutil.HandleParse(fs, cli.KindIndex, opts, err, outw, stderr); done {
		return code
	}
	cfg := opts.Config

	logger, err := cmdutil.NewLogger(stderr, cfg.LogFormat, cfg.LogLevel, opts.Quiet)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return appshell.ExitUsage
	}
	built, err := appcore.BuildSimulation(parent, cfg, logger)
	if err != nil {
		if parent.Err() != nil {
			return appshell.ExitCancelled
		}
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appshell.ExitRuntime
	}
	for _, a := range built.Artifacts {
		if _, err := fmt.Fprintf(outw, "%s\t%s\t%s\n", a.Genome, a.Kind, a.Path); err != nil {
			break
		}
	}
	if err := outw.Flush(); err != nil && !writers.IsBrokenPipe(err) {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appshell.ExitRuntime
	}
	return appshell.ExitOK
}
