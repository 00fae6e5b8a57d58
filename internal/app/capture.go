package app

import "context"

// Capture runs the signal capture for one date.
func (a *App) Capture(ctx context.Context, opts CaptureOptions) error {
	svc := a.newCapture()

	count, err := svc.Capture(ctx, opts.Date)
	if err != nil {
		return err
	}

	a.Logger.Info().Str("date", opts.Date.ISO()).Int("entries", count).Msg("capture complete")
	return nil
}
