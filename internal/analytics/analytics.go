// Package analytics computes the enrichment metrics merged into captured
// signals: annualized realized volatility and total-return momentum over
// configurable rolling windows of daily closes.
package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"skewcapture/internal/config"
	"skewcapture/internal/datapath"
)

// Trading days per year, used to annualize daily return volatility.
const annualizationDays = 252

// Metrics holds the per-symbol enrichment values keyed by window size.
type Metrics struct {
	RealizedVol map[int]float64
	Momentum    map[int]decimal.Decimal
}

// Analyzer computes metrics over a price history.
type Analyzer struct {
	rvWindows  []int
	momWindows []int
}

// NewAnalyzer builds an Analyzer from the analytics config section.
func NewAnalyzer(cfg config.AnalyticsConfig) *Analyzer {
	return &Analyzer{
		rvWindows:  cfg.RealizedVolWindows,
		momWindows: cfg.MomentumWindows,
	}
}

// RealizedVolWindows returns the configured volatility windows.
func (a *Analyzer) RealizedVolWindows() []int { return a.rvWindows }

// MomentumWindows returns the configured momentum windows.
func (a *Analyzer) MomentumWindows() []int { return a.momWindows }

// ComputeAsOf derives metrics per symbol from price history up to and
// including asOf. Windows without enough history are simply absent from the
// result maps; symbols with no history at all are absent from the outer map.
func (a *Analyzer) ComputeAsOf(prices []Price, asOf datapath.Date) map[string]Metrics {
	series := groupBySymbol(prices, asOf)

	result := make(map[string]Metrics, len(series))
	for symbol, closes := range series {
		metrics := Metrics{
			RealizedVol: map[int]float64{},
			Momentum:    map[int]decimal.Decimal{},
		}

		returns := logReturns(closes)
		for _, window := range a.rvWindows {
			if vol, ok := realizedVol(returns, window); ok {
				metrics.RealizedVol[window] = vol
			}
		}
		for _, window := range a.momWindows {
			if mom, ok := momentum(closes, window); ok {
				metrics.Momentum[window] = mom
			}
		}

		result[symbol] = metrics
	}
	return result
}

func groupBySymbol(prices []Price, asOf datapath.Date) map[string][]decimal.Decimal {
	bySymbol := map[string][]Price{}
	for _, p := range prices {
		if asOf.Time().Before(p.Date.Time()) {
			continue
		}
		bySymbol[p.Symbol] = append(bySymbol[p.Symbol], p)
	}

	series := make(map[string][]decimal.Decimal, len(bySymbol))
	for symbol, points := range bySymbol {
		sort.Slice(points, func(i, j int) bool {
			return points[i].Date.Before(points[j].Date)
		})
		closes := make([]decimal.Decimal, len(points))
		for i, p := range points {
			closes[i] = p.Close
		}
		series[symbol] = closes
	}
	return series
}

func logReturns(closes []decimal.Decimal) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1].InexactFloat64()
		cur := closes[i].InexactFloat64()
		if prev <= 0 || cur <= 0 {
			returns = append(returns, math.NaN())
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	return returns
}

// realizedVol is the sample standard deviation of the last window log
// returns, annualized by sqrt(252).
func realizedVol(returns []float64, window int) (float64, bool) {
	if window < 2 || len(returns) < window {
		return 0, false
	}

	tail := returns[len(returns)-window:]
	mean := 0.0
	for _, r := range tail {
		if math.IsNaN(r) {
			return 0, false
		}
		mean += r
	}
	mean /= float64(window)

	variance := 0.0
	for _, r := range tail {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(window - 1)

	return math.Sqrt(variance) * math.Sqrt(annualizationDays), true
}

// momentum is the total return over the window: close[t]/close[t-n] - 1.
func momentum(closes []decimal.Decimal, window int) (decimal.Decimal, bool) {
	if window < 1 || len(closes) < window+1 {
		return decimal.Decimal{}, false
	}
	base := closes[len(closes)-1-window]
	if base.IsZero() {
		return decimal.Decimal{}, false
	}
	return closes[len(closes)-1].Div(base).Sub(decimal.NewFromInt(1)), true
}
