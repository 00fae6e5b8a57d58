package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"skewcapture/internal/datapath"
	"skewcapture/internal/scheduler"
)

// Run executes the daily snapshot loop until interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched, err := scheduler.New(scheduler.Options{
		SnapshotTime: a.Config.Signals.SnapshotTime,
		Location:     a.Config.Location(),
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Str("snapshot_time", a.Config.Signals.SnapshotTime).Msg("starting daily snapshot loop")

	err = sched.Run(ctx, func(ctx context.Context, d datapath.Date) error {
		return a.Pipeline(ctx, PipelineOptions{Date: d})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("snapshot loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("snapshot loop stopped")
	return nil
}
