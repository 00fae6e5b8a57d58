// Package capture implements the daily signal capture: one screener export
// in, one day's signal log out. The operation is a stateless transform of the
// capture date; re-running a date replaces its output deterministically.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"skewcapture/internal/datapath"
	"skewcapture/internal/screener"
	"skewcapture/internal/signallog"
)

const lockRetryDelay = 100 * time.Millisecond

// Service performs signal capture for single dates.
type Service struct {
	paths  *datapath.Resolver
	day    signallog.DayStore
	master signallog.MasterStore
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a capture service.
func New(paths *datapath.Resolver, day signallog.DayStore, master signallog.MasterStore, logger zerolog.Logger) *Service {
	return &Service{
		paths:  paths,
		day:    day,
		master: master,
		logger: logger.With().Str("component", "capture").Logger(),
		now:    time.Now,
	}
}

// Capture reads the screener export for the date and writes the day's signal
// log plus the master log. It returns the number of entries written.
//
// The whole write happens under an exclusive file lock scoped to the date, so
// concurrent invocations for the same date serialise instead of interleaving;
// the master log rewrite takes a second, master-scoped lock so captures for
// different dates cannot drop each other's rows.
// A malformed export aborts the capture with nothing written; a partial log
// would mislead the forward-tester.
func (s *Service) Capture(ctx context.Context, d datapath.Date) (int, error) {
	inputPath := s.paths.Input(d)

	unlock, err := s.acquireLock(ctx, s.paths.Lock(d))
	if err != nil {
		return 0, err
	}
	defer unlock()

	// The existence check lives inside the lock: a stat taken before it
	// could race a concurrent removal and misreport the error kind.
	rows, err := screener.ReadFile(inputPath)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return 0, fmt.Errorf("%w: no screener export for %s at %s", ErrInputNotFound, d, inputPath)
		case errors.Is(err, screener.ErrMalformed):
			return 0, fmt.Errorf("%w: %s: %v", ErrInputMalformed, d, err)
		default:
			return 0, fmt.Errorf("read %s: %w", inputPath, err)
		}
	}

	entries := s.derive(rows, d)

	if err := s.day.WriteDay(d, entries); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrOutputWrite, d, err)
	}
	if err := s.replaceMasterDay(ctx, d, entries); err != nil {
		return 0, err
	}

	s.logger.Info().
		Str("date", d.ISO()).
		Int("entries", len(entries)).
		Str("input", inputPath).
		Str("day_log", s.paths.DayLog(d)).
		Msg("signals captured")

	return len(entries), nil
}

func (s *Service) derive(rows []screener.Row, d datapath.Date) []signallog.Entry {
	ts := s.now().UTC()
	entries := make([]signallog.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, signallog.Entry{
			Symbol:       row.Symbol,
			Name:         row.Name,
			Last:         row.Last,
			Volume:       row.Volume,
			RunDate:      d,
			RunTimestamp: ts,
		})
	}
	return entries
}

// replaceMasterDay rewrites the master log under its own lock. Captures for
// different dates hold different per-date locks, so the shared read-filter-
// rewrite of the master log needs a master-scoped lock to avoid losing one
// writer's rows to the other's rename.
func (s *Service) replaceMasterDay(ctx context.Context, d datapath.Date, entries []signallog.Entry) error {
	unlock, err := s.acquireLock(ctx, s.paths.MasterLock())
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.master.ReplaceDay(d, entries); err != nil {
		return fmt.Errorf("%w: master log for %s: %v", ErrOutputWrite, d, err)
	}
	return nil
}

func (s *Service) acquireLock(ctx context.Context, lockPath string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire capture lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("capture lock %s not acquired", lockPath)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Error().Err(err).Str("lock", lockPath).Msg("failed to release capture lock")
		}
	}, nil
}
