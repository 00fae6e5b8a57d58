// Package datapath maps capture dates to the flat files the pipeline reads
// and writes. Naming conventions live here and nowhere else.
package datapath

import (
	"fmt"
	"path/filepath"

	"skewcapture/internal/config"
)

const (
	screenerPattern = "stocks-screener-skewcapture-screener-%s.csv"
	dayLogPattern   = "signals_%s.csv"
	enrichedPattern = "enriched_signals_%s.csv"
)

// Resolver turns a capture date into concrete file paths.
type Resolver struct {
	barchartDir  string
	rawDir       string
	processedDir string
	signalLog    string
}

// NewResolver builds a Resolver from the data section of the config.
func NewResolver(cfg config.DataConfig) *Resolver {
	return &Resolver{
		barchartDir:  cfg.BarchartDir,
		rawDir:       cfg.RawDir,
		processedDir: cfg.ProcessedDir,
		signalLog:    cfg.SignalLog,
	}
}

// Input returns the Barchart screener export path for a date (MM-DD-YYYY).
func (r *Resolver) Input(d Date) string {
	name := fmt.Sprintf(screenerPattern, d.Format("01-02-2006"))
	return filepath.Join(r.barchartDir, name)
}

// DayLog returns the per-date signal log path (YYYYMMDD).
func (r *Resolver) DayLog(d Date) string {
	return filepath.Join(r.rawDir, fmt.Sprintf(dayLogPattern, d.Format("20060102")))
}

// Enriched returns the enriched snapshot path (YYYYMMDD).
func (r *Resolver) Enriched(d Date) string {
	return filepath.Join(r.processedDir, fmt.Sprintf(enrichedPattern, d.Format("20060102")))
}

// MasterLog returns the rolling log holding every day's signals.
func (r *Resolver) MasterLog() string {
	return r.signalLog
}

// Lock returns the lock file guarding writes for a date.
func (r *Resolver) Lock(d Date) string {
	return r.DayLog(d) + ".lock"
}

// MasterLock returns the lock file guarding the master log. The per-date
// lock only serialises same-date captures; rewrites of the shared master
// log need their own lock.
func (r *Resolver) MasterLock() string {
	return r.signalLog + ".lock"
}
