// internal/serveapp/app.go
package serveapp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"genomecmp/internal/appcore"
	"genomecmp/internal/appshell"
	"genomecmp/internal/cli"
	"genomecmp/internal/cmdutil"
	"genomecmp/internal/output"
	"genomecmp/internal/server"
)

// RunContext builds every session up front, then serves the HTTP API
// until the context is cancelled.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("genomecmp-serve")

	opts, err := cli.ParseArgs(fs, argv, cli.KindServe)
	if code, done := cmdutil.HandleParse(fs, cli.KindServe, opts, err, outw, stderr); done {
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

	srv := server.New(built.Simulation, output.ToAPIConfig(cfg, built.Lengths), output.NamesOf(cfg), server.Options{
		Workers:        cfg.Workers,
		UpdateInterval: cfg.UpdateInterval,
		Seed:           cfg.Seed,
		DefaultSamples: cfg.Samples,
		Heartbeat:      15 * time.Second,
	}, logger)
	if err := srv.ListenAndServe(parent, cfg.Listen); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appshell.ExitRuntime
	}
	return appshell.ExitOK
}
