// Package screener reads Barchart screener exports. The files are treated as
// read-only input; rows are parsed in order and never written back.
package screener

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformed marks an export that exists but does not match the expected
// schema (missing Symbol column, wrong field count, unparsable numeric).
var ErrMalformed = errors.New("screener: malformed export")

// Barchart appends a provenance line after the data rows.
const footerPrefix = "Downloaded from Barchart.com"

// Column names recognised in the export header.
const (
	colSymbol = "Symbol"
	colName   = "Name"
	colLast   = "Last"
	colVolume = "Volume"
)

// Row is one screened instrument. Last and Volume are nil when the export
// does not carry those columns.
type Row struct {
	Symbol string
	Name   string
	Last   *decimal.Decimal
	Volume *int64
}

// ReadFile parses the export at path.
func ReadFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Read parses an export from r.
func Read(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}

	cols := indexColumns(header)
	symbolIdx, ok := cols[colSymbol]
	if !ok {
		return nil, fmt.Errorf("%w: header has no %s column", ErrMalformed, colSymbol)
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}

		if isFooter(record) {
			break
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrMalformed, line, len(record), len(header))
		}

		row, err := parseRow(record, cols, symbolIdx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func isFooter(record []string) bool {
	return len(record) >= 1 && strings.HasPrefix(strings.TrimSpace(record[0]), footerPrefix)
}

func parseRow(record []string, cols map[string]int, symbolIdx int) (Row, error) {
	row := Row{Symbol: strings.TrimSpace(record[symbolIdx])}
	if row.Symbol == "" {
		return Row{}, errors.New("empty Symbol")
	}

	if idx, ok := cols[colName]; ok {
		row.Name = strings.TrimSpace(record[idx])
	}

	if idx, ok := cols[colLast]; ok {
		raw := strings.TrimSpace(record[idx])
		if raw != "" {
			last, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
			if err != nil {
				return Row{}, fmt.Errorf("parse %s %q: %v", colLast, raw, err)
			}
			row.Last = &last
		}
	}

	if idx, ok := cols[colVolume]; ok {
		raw := strings.TrimSpace(record[idx])
		if raw != "" {
			volume, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
			if err != nil {
				return Row{}, fmt.Errorf("parse %s %q: %v", colVolume, raw, err)
			}
			row.Volume = &volume
		}
	}

	return row, nil
}
