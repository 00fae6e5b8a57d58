package signallog

import (
	"time"

	"github.com/shopspring/decimal"

	"skewcapture/internal/datapath"
)

// Entry is one row of the signal log: a screened instrument annotated with
// the capture run. Once written an entry is never mutated.
type Entry struct {
	Symbol       string
	Name         string
	Last         *decimal.Decimal
	Volume       *int64
	IVShort      string
	IVLong       string
	SkewZ        string
	Momentum     string
	RunDate      datapath.Date
	RunTimestamp time.Time
}
