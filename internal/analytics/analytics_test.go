package analytics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"skewcapture/internal/config"
	"skewcapture/internal/datapath"
)

func mustDate(t *testing.T, s string) datapath.Date {
	t.Helper()
	d, err := datapath.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}

func pricesFor(t *testing.T, symbol string, start string, closes ...string) []Price {
	t.Helper()
	d := mustDate(t, start)
	prices := make([]Price, 0, len(closes))
	for i, c := range closes {
		prices = append(prices, Price{
			Date:   datapath.DateOf(d.Time().AddDate(0, 0, i)),
			Symbol: symbol,
			Close:  decimal.RequireFromString(c),
		})
	}
	return prices
}

func TestMomentumKnownValues(t *testing.T) {
	a := NewAnalyzer(config.AnalyticsConfig{MomentumWindows: []int{1, 2}})
	prices := pricesFor(t, "AAPL", "2024-05-29", "100", "110", "121")

	metrics := a.ComputeAsOf(prices, mustDate(t, "2024-06-02"))
	m, ok := metrics["AAPL"]
	if !ok {
		t.Fatal("expected metrics for AAPL")
	}

	mom1, ok := m.Momentum[1]
	if !ok || !mom1.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("mom_1 = %s, want 0.1", mom1)
	}
	mom2, ok := m.Momentum[2]
	if !ok || !mom2.Equal(decimal.RequireFromString("0.21")) {
		t.Fatalf("mom_2 = %s, want 0.21", mom2)
	}
}

func TestRealizedVolConstantReturnsIsZero(t *testing.T) {
	a := NewAnalyzer(config.AnalyticsConfig{RealizedVolWindows: []int{2}})
	prices := pricesFor(t, "AAPL", "2024-05-29", "100", "110", "121")

	metrics := a.ComputeAsOf(prices, mustDate(t, "2024-06-02"))
	vol, ok := metrics["AAPL"].RealizedVol[2]
	if !ok {
		t.Fatal("expected rv_2")
	}
	if vol != 0 {
		t.Fatalf("constant log returns should give zero vol, got %f", vol)
	}
}

func TestRealizedVolKnownValue(t *testing.T) {
	a := NewAnalyzer(config.AnalyticsConfig{RealizedVolWindows: []int{2}})
	prices := pricesFor(t, "AAPL", "2024-05-29", "100", "110", "100")

	metrics := a.ComputeAsOf(prices, mustDate(t, "2024-06-02"))
	vol, ok := metrics["AAPL"].RealizedVol[2]
	if !ok {
		t.Fatal("expected rv_2")
	}

	// Returns are +ln(1.1) and -ln(1.1); sample std over 2 observations is
	// sqrt(2)*ln(1.1), annualized by sqrt(252).
	want := math.Sqrt2 * math.Log(1.1) * math.Sqrt(252)
	if math.Abs(vol-want) > 1e-9 {
		t.Fatalf("rv_2 = %f, want %f", vol, want)
	}
}

func TestInsufficientHistoryOmitsWindow(t *testing.T) {
	a := NewAnalyzer(config.AnalyticsConfig{
		RealizedVolWindows: []int{10},
		MomentumWindows:    []int{10},
	})
	prices := pricesFor(t, "AAPL", "2024-05-29", "100", "110", "121")

	metrics := a.ComputeAsOf(prices, mustDate(t, "2024-06-02"))
	m := metrics["AAPL"]
	if _, ok := m.RealizedVol[10]; ok {
		t.Fatal("rv_10 should be absent with 3 closes")
	}
	if _, ok := m.Momentum[10]; ok {
		t.Fatal("mom_10 should be absent with 3 closes")
	}
}

func TestComputeAsOfIgnoresFuturePrices(t *testing.T) {
	a := NewAnalyzer(config.AnalyticsConfig{MomentumWindows: []int{1}})
	prices := pricesFor(t, "AAPL", "2024-06-01", "100", "110", "999")

	metrics := a.ComputeAsOf(prices, mustDate(t, "2024-06-02"))
	mom, ok := metrics["AAPL"].Momentum[1]
	if !ok {
		t.Fatal("expected mom_1")
	}
	if !mom.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("prices after as-of date leaked into momentum: %s", mom)
	}
}

func TestReadPrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price_history.csv")
	content := "date,symbol,close\n2024-06-01,AAPL,195.89\n2024-06-02,AAPL,197.10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	prices, err := ReadPrices(path)
	if err != nil {
		t.Fatalf("read prices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(prices))
	}
	if prices[0].Symbol != "AAPL" || !prices[0].Close.Equal(decimal.RequireFromString("195.89")) {
		t.Fatalf("unexpected first price: %#v", prices[0])
	}
}

func TestReadPricesMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price_history.csv")
	if err := os.WriteFile(path, []byte("date,ticker,close\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := ReadPrices(path); err == nil {
		t.Fatal("missing symbol column should fail")
	}
}
