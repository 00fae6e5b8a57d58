package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"skewcapture/internal/datapath"
)

// Price is one daily close observation from the price history file.
type Price struct {
	Date   datapath.Date
	Symbol string
	Close  decimal.Decimal
}

// ReadPrices loads a price history CSV with columns date,symbol,close.
func ReadPrices(path string) ([]Price, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	prices, err := readPrices(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prices, nil
}

func readPrices(r io.Reader) ([]Price, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	dateIdx, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("price history has no date column")
	}
	symbolIdx, ok := cols["symbol"]
	if !ok {
		return nil, fmt.Errorf("price history has no symbol column")
	}
	closeIdx, ok := cols["close"]
	if !ok {
		return nil, fmt.Errorf("price history has no close column")
	}

	var prices []Price
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := datapath.ParseDate(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		closePx, err := decimal.NewFromString(strings.TrimSpace(record[closeIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse close: %w", line, err)
		}

		prices = append(prices, Price{
			Date:   date,
			Symbol: strings.TrimSpace(record[symbolIdx]),
			Close:  closePx,
		})
	}
	return prices, nil
}
