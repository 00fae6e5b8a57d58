// Package signallog persists capture output as flat CSV files: one log per
// capture date plus a rolling master log across all dates. Every write is a
// whole-file replace through a temp file and rename, so readers never observe
// a partially written log.
package signallog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"skewcapture/internal/datapath"
)

// ErrHeaderMismatch indicates an existing log file whose header does not
// match the expected schema.
var ErrHeaderMismatch = errors.New("signallog: header mismatch")

var header = []string{
	"Symbol",
	"Name",
	"Last",
	"Volume",
	"IV_short",
	"IV_long",
	"skew_z",
	"momentum",
	"run_date",
	"run_timestamp",
}

// Header returns a copy of the signal log CSV header.
func Header() []string {
	return append([]string(nil), header...)
}

// Encode renders an entry as a CSV record matching Header.
func Encode(e Entry) []string {
	return encodeEntry(e)
}

// DayStore defines per-date log persistence.
type DayStore interface {
	WriteDay(d datapath.Date, entries []Entry) error
	ReadDay(d datapath.Date) ([]Entry, error)
}

// MasterStore defines rolling-log persistence.
type MasterStore interface {
	ReplaceDay(d datapath.Date, entries []Entry) error
	ReadMaster() ([]Entry, error)
}

// Log reads and writes signal logs under the configured data directories.
type Log struct {
	paths *datapath.Resolver
}

// New wires a path resolver into a Log.
func New(paths *datapath.Resolver) *Log {
	return &Log{paths: paths}
}

var _ DayStore = (*Log)(nil)
var _ MasterStore = (*Log)(nil)

// WriteDay replaces the per-date log with the given entries.
func (l *Log) WriteDay(d datapath.Date, entries []Entry) error {
	return writeAtomic(l.paths.DayLog(d), entries)
}

// ReadDay loads the per-date log. A missing file yields no entries.
func (l *Log) ReadDay(d datapath.Date) ([]Entry, error) {
	return readFile(l.paths.DayLog(d))
}

// ReplaceDay rewrites the master log with any previous entries for the date
// dropped and the given entries appended. Re-capturing a date therefore
// leaves exactly one generation of that date's signals in the log.
func (l *Log) ReplaceDay(d datapath.Date, entries []Entry) error {
	existing, err := readFile(l.paths.MasterLog())
	if err != nil {
		return err
	}

	merged := make([]Entry, 0, len(existing)+len(entries))
	for _, entry := range existing {
		if entry.RunDate.Equal(d) {
			continue
		}
		merged = append(merged, entry)
	}
	merged = append(merged, entries...)

	return writeAtomic(l.paths.MasterLog(), merged)
}

// ReadMaster loads the full master log. A missing file yields no entries.
func (l *Log) ReadMaster() ([]Entry, error) {
	return readFile(l.paths.MasterLog())
}

func writeAtomic(path string, entries []Entry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := writeEntries(tmp, entries); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func writeEntries(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writer.Write(encodeEntry(entry)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func readFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	entries, err := readEntries(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)

	got, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(got) != len(header) {
		return nil, fmt.Errorf("%w: %d columns, want %d", ErrHeaderMismatch, len(got), len(header))
	}
	for i, name := range header {
		if got[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i, got[i], name)
		}
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entry, err := decodeEntry(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func encodeEntry(e Entry) []string {
	last := ""
	if e.Last != nil {
		last = e.Last.String()
	}
	volume := ""
	if e.Volume != nil {
		volume = strconv.FormatInt(*e.Volume, 10)
	}
	return []string{
		e.Symbol,
		e.Name,
		last,
		volume,
		e.IVShort,
		e.IVLong,
		e.SkewZ,
		e.Momentum,
		e.RunDate.ISO(),
		e.RunTimestamp.UTC().Format(time.RFC3339),
	}
}

func decodeEntry(record []string) (Entry, error) {
	if len(record) != len(header) {
		return Entry{}, fmt.Errorf("row has %d fields, want %d", len(record), len(header))
	}

	entry := Entry{
		Symbol:   record[0],
		Name:     record[1],
		IVShort:  record[4],
		IVLong:   record[5],
		SkewZ:    record[6],
		Momentum: record[7],
	}

	if record[2] != "" {
		last, err := decimal.NewFromString(record[2])
		if err != nil {
			return Entry{}, fmt.Errorf("parse Last %q: %w", record[2], err)
		}
		entry.Last = &last
	}
	if record[3] != "" {
		volume, err := strconv.ParseInt(record[3], 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("parse Volume %q: %w", record[3], err)
		}
		entry.Volume = &volume
	}

	runDate, err := datapath.ParseDate(record[8])
	if err != nil {
		return Entry{}, fmt.Errorf("parse run_date: %w", err)
	}
	entry.RunDate = runDate

	ts, err := time.Parse(time.RFC3339, record[9])
	if err != nil {
		return Entry{}, fmt.Errorf("parse run_timestamp %q: %w", record[9], err)
	}
	entry.RunTimestamp = ts

	return entry, nil
}
