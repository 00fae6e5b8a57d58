package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"skewcapture/internal/analytics"
	"skewcapture/internal/signallog"
)

// Enrich merges realized-vol and momentum metrics into the day's captured
// signals and writes the enriched snapshot.
func (a *App) Enrich(ctx context.Context, opts EnrichOptions) error {
	paths, log := a.newLog()

	entries, err := log.ReadDay(opts.Date)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no signals logged for %s; run capture first", opts.Date)
	}

	metrics, err := a.loadMetrics(opts)
	if err != nil {
		return err
	}

	analyzer := a.newAnalyzer()
	outPath := paths.Enriched(opts.Date)
	if err := writeEnrichedCSV(outPath, entries, metrics, analyzer.RealizedVolWindows(), analyzer.MomentumWindows()); err != nil {
		return err
	}

	a.Logger.Info().
		Str("date", opts.Date.ISO()).
		Int("entries", len(entries)).
		Str("output", outPath).
		Msg("enriched snapshot written")
	return nil
}

// Pipeline runs capture then enrich for one date. An export with no data
// rows is a valid capture of zero signals, so the pipeline skips enrichment
// instead of failing on the empty day log.
func (a *App) Pipeline(ctx context.Context, opts PipelineOptions) error {
	if err := a.Capture(ctx, CaptureOptions{Date: opts.Date}); err != nil {
		return err
	}

	_, log := a.newLog()
	entries, err := log.ReadDay(opts.Date)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.Logger.Warn().
			Str("date", opts.Date.ISO()).
			Msg("no signals captured; skipping enrichment")
		return nil
	}

	return a.Enrich(ctx, EnrichOptions{Date: opts.Date})
}

func (a *App) loadMetrics(opts EnrichOptions) (map[string]analytics.Metrics, error) {
	pricePath := a.Config.Data.PriceHistory
	if pricePath == "" {
		a.Logger.Warn().Msg("data.price_history not configured; writing raw signals without metrics")
		return nil, nil
	}

	prices, err := analytics.ReadPrices(pricePath)
	if err != nil {
		if os.IsNotExist(err) {
			a.Logger.Warn().Str("path", pricePath).Msg("price history file missing; writing raw signals without metrics")
			return nil, nil
		}
		return nil, err
	}

	return a.newAnalyzer().ComputeAsOf(prices, opts.Date), nil
}

func writeEnrichedCSV(path string, entries []signallog.Entry, metrics map[string]analytics.Metrics, rvWindows, momWindows []int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := signallog.Header()
	for _, w := range rvWindows {
		header = append(header, fmt.Sprintf("rv_%d", w))
	}
	for _, w := range momWindows {
		header = append(header, fmt.Sprintf("mom_%d", w))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, entry := range entries {
		record := signallog.Encode(entry)
		m, ok := metrics[entry.Symbol]
		for _, w := range rvWindows {
			value := ""
			if ok {
				if vol, has := m.RealizedVol[w]; has {
					value = strconv.FormatFloat(vol, 'f', 6, 64)
				}
			}
			record = append(record, value)
		}
		for _, w := range momWindows {
			value := ""
			if ok {
				if mom, has := m.Momentum[w]; has {
					value = mom.StringFixed(6)
				}
			}
			record = append(record, value)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
