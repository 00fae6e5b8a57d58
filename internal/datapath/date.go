package datapath

import (
	"fmt"
	"time"
)

// ISODate is the invocation-surface date layout.
const ISODate = "2006-01-02"

// Date is a calendar date. The zero value is not a valid capture date.
type Date struct {
	t time.Time
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return Date{t: t}, nil
}

// DateOf truncates a time to its calendar date in that time's location.
func DateOf(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Format renders the date using a time layout.
func (d Date) Format(layout string) string {
	return d.t.Format(layout)
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.t.Format(ISODate)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time exposes the underlying midnight-UTC instant.
func (d Date) Time() time.Time {
	return d.t
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) String() string {
	return d.ISO()
}
