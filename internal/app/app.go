package app

import (
	"github.com/rs/zerolog"

	"skewcapture/internal/analytics"
	"skewcapture/internal/capture"
	"skewcapture/internal/config"
	"skewcapture/internal/datapath"
	"skewcapture/internal/signallog"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newPaths() *datapath.Resolver {
	return datapath.NewResolver(a.Config.Data)
}

func (a *App) newLog() (*datapath.Resolver, *signallog.Log) {
	paths := a.newPaths()
	return paths, signallog.New(paths)
}

func (a *App) newCapture() *capture.Service {
	paths, log := a.newLog()
	return capture.New(paths, log, log, a.Logger)
}

func (a *App) newAnalyzer() *analytics.Analyzer {
	return analytics.NewAnalyzer(a.Config.Analytics)
}

// CaptureOptions configure the capture command.
type CaptureOptions struct {
	Date datapath.Date
}

// EnrichOptions configure the enrich command.
type EnrichOptions struct {
	Date datapath.Date
}

// PipelineOptions configure the pipeline command.
type PipelineOptions struct {
	Date datapath.Date
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
	Date  datapath.Date
}

// ExportOptions hold parameters for exporting logged signals.
type ExportOptions struct {
	From      *datapath.Date
	To        *datapath.Date
	CSVPath   string
	PNGPath   string
	MaxPoints int
}
