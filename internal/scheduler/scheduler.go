// Package scheduler drives the daily snapshot loop. The capture core stays a
// pure function of the date; this package only decides when to call it.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"skewcapture/internal/datapath"
)

// TickFunc is invoked once per scheduled day with that day's date.
type TickFunc func(ctx context.Context, d datapath.Date) error

// Options tune daily scheduling.
type Options struct {
	// SnapshotTime is the wall-clock trigger time in HH:MM form.
	SnapshotTime string
	// Location resolves the wall clock. Defaults to time.Local.
	Location *time.Location
}

// Daily runs a tick once per calendar day at a fixed wall-clock time.
type Daily struct {
	hour   int
	minute int
	loc    *time.Location
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a Daily scheduler.
func New(opts Options, logger zerolog.Logger) (*Daily, error) {
	at, err := time.Parse("15:04", opts.SnapshotTime)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot time %q: %w", opts.SnapshotTime, err)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Daily{
		hour:   at.Hour(),
		minute: at.Minute(),
		loc:    loc,
		logger: logger.With().Str("component", "scheduler").Logger(),
		now:    time.Now,
	}, nil
}

// Run blocks, invoking the tick at each daily trigger until ctx is cancelled.
// A failed tick is logged and does not stop the loop; the next chance for a
// date is the next manual run, since inputs are dated.
func (d *Daily) Run(ctx context.Context, tick TickFunc) error {
	for {
		next := d.NextRun(d.now().In(d.loc))
		d.logger.Info().Time("next_run", next).Msg("waiting for next snapshot")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		date := datapath.DateOf(next)
		d.logger.Info().Str("date", date.ISO()).Msg("executing daily snapshot")

		if err := tick(ctx, date); err != nil {
			d.logger.Error().Err(err).Str("date", date.ISO()).Msg("daily snapshot failed")
		}
	}
}

// NextRun returns the first trigger instant strictly after now.
func (d *Daily) NextRun(now time.Time) time.Time {
	now = now.In(d.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
