package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"skewcapture/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Data      DataConfig      `mapstructure:"data"`
	Signals   SignalsConfig   `mapstructure:"signals"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DataConfig locates the flat-file data directories.
type DataConfig struct {
	BarchartDir  string `mapstructure:"barchart_dir"`
	RawDir       string `mapstructure:"raw_dir"`
	ProcessedDir string `mapstructure:"processed_dir"`
	SignalLog    string `mapstructure:"signal_log"`
	PriceHistory string `mapstructure:"price_history"`
}

// SignalsConfig governs the daily snapshot cadence.
type SignalsConfig struct {
	SnapshotTime string `mapstructure:"snapshot_time"`
	Timezone     string `mapstructure:"timezone"`
}

// AnalyticsConfig sets the rolling windows for enrichment metrics.
type AnalyticsConfig struct {
	RealizedVolWindows []int `mapstructure:"realized_vol_windows"`
	MomentumWindows    []int `mapstructure:"momentum_windows"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SKEWCAPTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "skewcapture")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("data.barchart_dir", "data/barchart")
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.signal_log", "data/raw/all_signals_log.csv")
	v.SetDefault("data.price_history", "")

	v.SetDefault("signals.snapshot_time", "03:53")
	v.SetDefault("signals.timezone", "Local")

	v.SetDefault("analytics.realized_vol_windows", []int{10, 20, 60})
	v.SetDefault("analytics.momentum_windows", []int{10, 30, 60})

	v.SetDefault("export.max_data_points", 100000)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Data.BarchartDir == "" {
		return fmt.Errorf("data.barchart_dir must not be empty")
	}
	if c.Data.RawDir == "" {
		return fmt.Errorf("data.raw_dir must not be empty")
	}
	if c.Data.SignalLog == "" {
		return fmt.Errorf("data.signal_log must not be empty")
	}
	if _, err := time.Parse("15:04", c.Signals.SnapshotTime); err != nil {
		return fmt.Errorf("signals.snapshot_time must be HH:MM: %w", err)
	}
	if c.Signals.Timezone != "" && c.Signals.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Signals.Timezone); err != nil {
			return fmt.Errorf("signals.timezone is not a valid IANA zone: %w", err)
		}
	}
	for _, w := range c.Analytics.RealizedVolWindows {
		if w < 2 {
			return fmt.Errorf("analytics.realized_vol_windows entries must be at least 2, got %d", w)
		}
	}
	for _, w := range c.Analytics.MomentumWindows {
		if w < 1 {
			return fmt.Errorf("analytics.momentum_windows entries must be at least 1, got %d", w)
		}
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// Location resolves the configured timezone for the daily runner.
func (c *Config) Location() *time.Location {
	if c.Signals.Timezone == "" || c.Signals.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Signals.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
