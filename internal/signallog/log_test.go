package signallog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"skewcapture/internal/config"
	"skewcapture/internal/datapath"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	root := t.TempDir()
	return New(datapath.NewResolver(config.DataConfig{
		BarchartDir:  filepath.Join(root, "barchart"),
		RawDir:       filepath.Join(root, "raw"),
		ProcessedDir: filepath.Join(root, "processed"),
		SignalLog:    filepath.Join(root, "raw", "all_signals_log.csv"),
	}))
}

func testEntries(t *testing.T, iso string, symbols ...string) []Entry {
	t.Helper()
	d, err := datapath.ParseDate(iso)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}

	last := decimal.RequireFromString("195.89")
	volume := int64(48201300)
	entries := make([]Entry, 0, len(symbols))
	for _, symbol := range symbols {
		entries = append(entries, Entry{
			Symbol:       symbol,
			Name:         symbol + " Inc",
			Last:         &last,
			Volume:       &volume,
			RunDate:      d,
			RunTimestamp: time.Date(2024, 6, 2, 21, 0, 0, 0, time.UTC),
		})
	}
	return entries
}

func TestDayLogRoundTrip(t *testing.T) {
	log := newTestLog(t)
	d, _ := datapath.ParseDate("2024-06-02")

	if err := log.WriteDay(d, testEntries(t, "2024-06-02", "AAPL", "MSFT")); err != nil {
		t.Fatalf("write day: %v", err)
	}

	entries, err := log.ReadDay(d)
	if err != nil {
		t.Fatalf("read day: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	got := entries[0]
	if got.Symbol != "AAPL" || got.Name != "AAPL Inc" {
		t.Fatalf("unexpected entry: %#v", got)
	}
	if got.Last == nil || !got.Last.Equal(decimal.RequireFromString("195.89")) {
		t.Fatalf("Last did not round trip: %#v", got.Last)
	}
	if got.Volume == nil || *got.Volume != 48201300 {
		t.Fatalf("Volume did not round trip: %#v", got.Volume)
	}
	if !got.RunDate.Equal(d) {
		t.Fatalf("RunDate did not round trip: %s", got.RunDate)
	}
}

func TestReadDayMissingFileYieldsNoEntries(t *testing.T) {
	log := newTestLog(t)
	d, _ := datapath.ParseDate("2024-06-02")

	entries, err := log.ReadDay(d)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestReplaceDayDropsPreviousGeneration(t *testing.T) {
	log := newTestLog(t)
	first, _ := datapath.ParseDate("2024-06-02")
	second, _ := datapath.ParseDate("2024-06-03")

	if err := log.ReplaceDay(first, testEntries(t, "2024-06-02", "AAPL", "MSFT", "NVDA")); err != nil {
		t.Fatalf("replace first: %v", err)
	}
	if err := log.ReplaceDay(second, testEntries(t, "2024-06-03", "TSLA")); err != nil {
		t.Fatalf("replace second: %v", err)
	}
	if err := log.ReplaceDay(first, testEntries(t, "2024-06-02", "AAPL")); err != nil {
		t.Fatalf("re-replace first: %v", err)
	}

	entries, err := log.ReadMaster()
	if err != nil {
		t.Fatalf("read master: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (1 per date), got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Symbol != "TSLA" && entry.Symbol != "AAPL" {
			t.Fatalf("unexpected symbol %s in master log", entry.Symbol)
		}
	}
}

func TestReadRejectsHeaderMismatch(t *testing.T) {
	log := newTestLog(t)
	d, _ := datapath.ParseDate("2024-06-02")

	path := log.paths.DayLog(d)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("these,are,not,the,columns\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := log.ReadDay(d); !errors.Is(err, ErrHeaderMismatch) {
		t.Fatalf("expected ErrHeaderMismatch, got %v", err)
	}
}

func TestWriteDayLeavesNoTempFiles(t *testing.T) {
	log := newTestLog(t)
	d, _ := datapath.ParseDate("2024-06-02")

	if err := log.WriteDay(d, testEntries(t, "2024-06-02", "AAPL")); err != nil {
		t.Fatalf("write day: %v", err)
	}

	dir := filepath.Dir(log.paths.DayLog(d))
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected only the day log in %s, found %d files", dir, len(files))
	}
}
