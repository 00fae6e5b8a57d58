package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Show prints recent signal log entries.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	_, log := a.newLog()

	entries, err := log.ReadMaster()
	if err != nil {
		return err
	}

	if !opts.Date.IsZero() {
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.RunDate.Equal(opts.Date) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "no signals found")
		return nil
	}

	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[len(entries)-opts.Limit:]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tSymbol\tName\tLast\tVolume\tCaptured (UTC)")

	for _, entry := range entries {
		last := ""
		if entry.Last != nil {
			last = entry.Last.StringFixed(2)
		}
		volume := ""
		if entry.Volume != nil {
			volume = strconv.FormatInt(*entry.Volume, 10)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.RunDate.ISO(),
			entry.Symbol,
			sanitizeInline(entry.Name),
			last,
			volume,
			entry.RunTimestamp.UTC().Format(time.RFC3339),
		)
	}

	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
