package app

import (
	"context"
	"errors"

	"skewcapture/internal/capture"
	"skewcapture/internal/datapath"
	"skewcapture/internal/screener"
)

// BackfillOptions configure the backfill job.
type BackfillOptions struct {
	From   datapath.Date
	To     datapath.Date
	DryRun bool
}

// Backfill captures every date in [From, To] that has a screener export on
// disk. Dates without an export are skipped, not failed; the exports are
// dated and will never appear retroactively.
func (a *App) Backfill(ctx context.Context, opts BackfillOptions) error {
	if opts.To.Before(opts.From) {
		return errors.New("--from must not be after --to")
	}

	paths := a.newPaths()
	svc := a.newCapture()

	processed := 0
	skipped := 0
	failed := 0
	for d := opts.From; !opts.To.Before(d); d = datapath.DateOf(d.Time().AddDate(0, 0, 1)) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if opts.DryRun {
			rows, err := screener.ReadFile(paths.Input(d))
			switch {
			case err == nil:
				a.Logger.Info().Str("date", d.ISO()).Int("entries", len(rows)).Msg("dry-run: export parsed")
				processed++
			case errors.Is(err, screener.ErrMalformed):
				a.Logger.Error().Err(err).Str("date", d.ISO()).Msg("dry-run: export malformed")
				failed++
			default:
				skipped++
			}
			continue
		}

		if _, err := svc.Capture(ctx, d); err != nil {
			if errors.Is(err, capture.ErrInputNotFound) {
				skipped++
				continue
			}
			failed++
			a.Logger.Error().Err(err).Str("date", d.ISO()).Msg("backfill capture failed")
			continue
		}
		processed++
	}

	a.Logger.Info().Int("processed", processed).Int("skipped", skipped).Int("failed", failed).Msg("backfill complete")
	if failed > 0 {
		return errors.New("some dates failed to backfill; check the log")
	}
	return nil
}
