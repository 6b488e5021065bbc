package cmdutil

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"genomecmp/internal/simulation"
)

// RunSamples drives sim.Run, logging progress at every update and
// forwarding each snapshot to onUpdate (optional). It returns the final
// snapshot and the run error.
func RunSamples(
	ctx context.Context,
	sim *simulation.Simulation,
	opts simulation.RunOptions,
	logger *slog.Logger,
	onUpdate func(simulation.State),
) (simulation.State, error) {
	start := time.Now()
	total := "unbounded"
	if opts.Samples > 0 {
		total = humanize.Comma(int64(opts.Samples))
	}
	logger.Info("sampling", "samples", total, "workers", opts.Workers)

	var last simulation.State
	err := sim.Run(ctx, opts, func(s simulation.State) {
		last = s
		logger.Debug("progress", "recorded", humanize.Comma(int64(s.Total)))
		if onUpdate != nil {
			onUpdate(s)
		}
	})
	logger.Info("sampling done",
		"recorded", humanize.Comma(int64(last.Total)),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return last, err
}
