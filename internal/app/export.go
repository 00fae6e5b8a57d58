package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"skewcapture/internal/signallog"
)

// Export renders a window of the master signal log as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	_, log := a.newLog()
	entries, err := log.ReadMaster()
	if err != nil {
		return err
	}

	entries = filterWindow(entries, opts)
	if len(entries) == 0 {
		a.Logger.Info().Msg("no signals found for export window")
		return nil
	}

	downsampled := downsampleEntries(entries, opts.MaxPoints)
	a.Logger.Info().Int("total", len(entries)).Int("exported", len(downsampled)).Msg("exporting signals")

	if opts.CSVPath != "" {
		if err := writeEntriesCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeDailyPNG(opts.PNGPath, entries); err != nil {
			return err
		}
	}

	return nil
}

func filterWindow(entries []signallog.Entry, opts ExportOptions) []signallog.Entry {
	if opts.From == nil && opts.To == nil {
		return entries
	}

	filtered := make([]signallog.Entry, 0, len(entries))
	for _, entry := range entries {
		if opts.From != nil && entry.RunDate.Before(*opts.From) {
			continue
		}
		if opts.To != nil && opts.To.Before(entry.RunDate) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func downsampleEntries(entries []signallog.Entry, max int) []signallog.Entry {
	if max <= 0 || len(entries) <= max {
		return entries
	}
	if max == 1 {
		return []signallog.Entry{entries[len(entries)-1]}
	}

	result := make([]signallog.Entry, 0, max)
	step := float64(len(entries)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(entries) {
			idx = len(entries) - 1
		}
		result = append(result, entries[idx])
	}
	return result
}

func writeEntriesCSV(path string, entries []signallog.Entry) error {
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

	if err := writer.Write(signallog.Header()); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writer.Write(signallog.Encode(entry)); err != nil {
			return err
		}
	}

	return writer.Error()
}

type dailyAggregate struct {
	day     time.Time
	count   float64
	avgLast float64
}

func aggregateDaily(entries []signallog.Entry) []dailyAggregate {
	type bucket struct {
		count   int
		lastSum float64
		lastN   int
	}

	byDay := map[time.Time]*bucket{}
	for _, entry := range entries {
		day := entry.RunDate.Time()
		b := byDay[day]
		if b == nil {
			b = &bucket{}
			byDay[day] = b
		}
		b.count++
		if entry.Last != nil {
			b.lastSum += entry.Last.InexactFloat64()
			b.lastN++
		}
	}

	days := make([]dailyAggregate, 0, len(byDay))
	for day, b := range byDay {
		agg := dailyAggregate{day: day, count: float64(b.count)}
		if b.lastN > 0 {
			agg.avgLast = b.lastSum / float64(b.lastN)
		}
		days = append(days, agg)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].day.Before(days[j].day) })
	return days
}

func writeDailyPNG(path string, entries []signallog.Entry) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	days := aggregateDaily(entries)
	if len(days) < 2 {
		return errors.New("need at least two capture dates to chart")
	}

	x := make([]time.Time, len(days))
	counts := make([]float64, len(days))
	avgLast := make([]float64, len(days))
	for i, day := range days {
		x[i] = day.day
		counts[i] = day.count
		avgLast[i] = day.avgLast
	}

	countFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Signals per day",
			ValueFormatter: countFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name: "Average last price",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Signals",
				XValues: x,
				YValues: counts,
			},
			chart.TimeSeries{
				Name:    "Avg Last",
				XValues: x,
				YValues: avgLast,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
