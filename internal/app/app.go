// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"genomecmp/internal/appcore"
	"genomecmp/internal/appshell"
	"genomecmp/internal/cli"
	"genomecmp/internal/cmdutil"
	"genomecmp/internal/output"
	"genomecmp/internal/simulation"
	"genomecmp/internal/writers"
	"genomecmp/pkg/api"
)

// RunContext samples query windows against the configured targets and
// prints the final counters.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("genomecmp")

	opts, err := cli.ParseArgs(fs, argv, cli.KindRun)
	if code, done := cmdutil.HandleParse(fs, cli.KindRun, opts, err, outw, stderr); done {
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
	names := output.NamesOf(cfg)

	var (
		progress chan<- api.StateV1
		pdone    <-chan error
	)
	if opts.Progress {
		progress, pdone = writers.StartProgressWriter(stdout, 16)
	}
	final, runErr := cmdutil.RunSamples(parent, built.Simulation, simulation.RunOptions{
		Samples:        cfg.Samples,
		Workers:        cfg.Workers,
		UpdateInterval: cfg.UpdateInterval,
		Seed:           cfg.Seed,
	}, logger, func(s simulation.State) {
		if progress != nil {
			progress <- output.ToAPIState(s, names, true)
		}
	})
	if progress != nil {
		close(progress)
		if err := <-pdone; err != nil {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return appshell.ExitRuntime
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		_, _ = fmt.Fprintln(stderr, "error:", runErr)
		return appshell.ExitRuntime
	}

	if err := writers.WriteState(opts.Output, outw, output.ToAPIState(final, names, false), opts.Header); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appshell.ExitRuntime
	}
	if err := outw.Flush(); err != nil && !writers.IsBrokenPipe(err) {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appshell.ExitRuntime
	}
	if runErr != nil {
		return appshell.ExitCancelled
	}
	return appshell.ExitOK
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
