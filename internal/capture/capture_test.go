package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"skewcapture/internal/config"
	"skewcapture/internal/datapath"
	"skewcapture/internal/signallog"
)

const sampleExport = `Symbol,Name,Last,Volume
AAPL,Apple Inc,195.89,"48,201,300"
MSFT,Microsoft Corp,415.13,"18,044,900"
NVDA,NVIDIA Corp,1096.33,"41,238,700"
"Downloaded from Barchart.com as of 06-02-2024 04:12pm CDT"
`

func newTestService(t *testing.T) (*Service, *datapath.Resolver, *signallog.Log) {
	t.Helper()

	root := t.TempDir()
	paths := datapath.NewResolver(config.DataConfig{
		BarchartDir:  filepath.Join(root, "barchart"),
		RawDir:       filepath.Join(root, "raw"),
		ProcessedDir: filepath.Join(root, "processed"),
		SignalLog:    filepath.Join(root, "raw", "all_signals_log.csv"),
	})
	log := signallog.New(paths)
	svc := New(paths, log, log, zerolog.Nop())
	return svc, paths, log
}

func writeInput(t *testing.T, paths *datapath.Resolver, d datapath.Date, content string) {
	t.Helper()
	path := paths.Input(d)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir input dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
}

func mustDate(t *testing.T, s string) datapath.Date {
	t.Helper()
	d, err := datapath.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}

func TestCaptureWritesOneEntryPerRow(t *testing.T) {
	svc, paths, log := newTestService(t)
	date := mustDate(t, "2024-06-02")
	writeInput(t, paths, date, sampleExport)

	count, err := svc.Capture(context.Background(), date)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 entries written, got %d", count)
	}

	dayLog := paths.DayLog(date)
	if filepath.Base(dayLog) != "signals_20240602.csv" {
		t.Fatalf("unexpected day log name %s", dayLog)
	}

	entries, err := log.ReadDay(date)
	if err != nil {
		t.Fatalf("read day log: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries in day log, got %d", len(entries))
	}
	if entries[0].Symbol != "AAPL" || entries[2].Symbol != "NVDA" {
		t.Fatalf("entries out of order or wrong symbols: %#v", entries)
	}
	for _, entry := range entries {
		if entry.RunDate.ISO() != "2024-06-02" {
			t.Fatalf("entry run_date should be 2024-06-02, got %s", entry.RunDate.ISO())
		}
		if entry.Last == nil || entry.Volume == nil {
			t.Fatalf("Last and Volume should be populated: %#v", entry)
		}
	}
}

func TestCaptureIsIdempotent(t *testing.T) {
	svc, paths, log := newTestService(t)
	date := mustDate(t, "2024-06-02")
	writeInput(t, paths, date, sampleExport)

	for i := 0; i < 2; i++ {
		if _, err := svc.Capture(context.Background(), date); err != nil {
			t.Fatalf("capture %d failed: %v", i+1, err)
		}
	}

	entries, err := log.ReadDay(date)
	if err != nil {
		t.Fatalf("read day log: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("day log should hold 3 entries after re-capture, got %d", len(entries))
	}

	master, err := log.ReadMaster()
	if err != nil {
		t.Fatalf("read master log: %v", err)
	}
	if len(master) != 3 {
		t.Fatalf("master log should hold 3 entries after re-capture, got %d", len(master))
	}
}

func TestCaptureMasterLogKeepsOtherDates(t *testing.T) {
	svc, paths, log := newTestService(t)
	first := mustDate(t, "2024-06-02")
	second := mustDate(t, "2024-06-03")
	writeInput(t, paths, first, sampleExport)
	writeInput(t, paths, second, "Symbol,Last\nTSLA,178.79\n")

	if _, err := svc.Capture(context.Background(), first); err != nil {
		t.Fatalf("capture first date: %v", err)
	}
	if _, err := svc.Capture(context.Background(), second); err != nil {
		t.Fatalf("capture second date: %v", err)
	}
	if _, err := svc.Capture(context.Background(), first); err != nil {
		t.Fatalf("re-capture first date: %v", err)
	}

	master, err := log.ReadMaster()
	if err != nil {
		t.Fatalf("read master log: %v", err)
	}
	if len(master) != 4 {
		t.Fatalf("master log should hold 3+1 entries, got %d", len(master))
	}
}

func TestConcurrentCapturesForDifferentDatesKeepAllRows(t *testing.T) {
	svc, paths, log := newTestService(t)
	first := mustDate(t, "2024-06-02")
	second := mustDate(t, "2024-06-03")
	writeInput(t, paths, first, sampleExport)
	writeInput(t, paths, second, "Symbol,Last\nTSLA,178.79\n")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, date := range []datapath.Date{first, second} {
		wg.Add(1)
		go func(d datapath.Date) {
			defer wg.Done()
			if _, err := svc.Capture(context.Background(), d); err != nil {
				errs <- err
			}
		}(date)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent capture failed: %v", err)
	}

	master, err := log.ReadMaster()
	if err != nil {
		t.Fatalf("read master log: %v", err)
	}
	if len(master) != 4 {
		t.Fatalf("master log should hold both dates' entries, got %d", len(master))
	}
}

func TestCaptureMissingInputLeavesOutputUntouched(t *testing.T) {
	svc, paths, log := newTestService(t)
	date := mustDate(t, "2024-06-02")
	writeInput(t, paths, date, sampleExport)

	if _, err := svc.Capture(context.Background(), date); err != nil {
		t.Fatalf("seed capture failed: %v", err)
	}
	if err := os.Remove(paths.Input(date)); err != nil {
		t.Fatalf("remove input: %v", err)
	}

	_, err := svc.Capture(context.Background(), date)
	if !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}

	entries, readErr := log.ReadDay(date)
	if readErr != nil {
		t.Fatalf("read day log: %v", readErr)
	}
	if len(entries) != 3 {
		t.Fatalf("pre-existing day log should be unchanged, got %d entries", len(entries))
	}
}

func TestCaptureMalformedInputAbortsWithNoWrites(t *testing.T) {
	svc, paths, log := newTestService(t)
	date := mustDate(t, "2024-06-02")
	writeInput(t, paths, date, "Symbol,Name,Last\nAAPL,Apple Inc\n")

	_, err := svc.Capture(context.Background(), date)
	if !errors.Is(err, ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed, got %v", err)
	}

	if _, statErr := os.Stat(paths.DayLog(date)); !os.IsNotExist(statErr) {
		t.Fatalf("day log should not exist after aborted capture")
	}
	master, readErr := log.ReadMaster()
	if readErr != nil {
		t.Fatalf("read master log: %v", readErr)
	}
	if len(master) != 0 {
		t.Fatalf("master log should be empty after aborted capture, got %d entries", len(master))
	}
}

func TestCaptureEmptySymbolAborts(t *testing.T) {
	svc, paths, _ := newTestService(t)
	date := mustDate(t, "2024-06-02")
	writeInput(t, paths, date, "Symbol,Last\n,100.00\n")

	if _, err := svc.Capture(context.Background(), date); !errors.Is(err, ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed for empty Symbol, got %v", err)
	}
}
