package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lox/climateapi/internal/climate"
)

// Default values. The reference date and most active station describe the
// bundled Hawaii dataset and are not derived from it at runtime.
const (
	DefaultDatasetPath       = "Resources/hawaii.sqlite"
	DefaultMostRecentDate    = "2017-08-23"
	DefaultMostActiveStation = "USC00519281"
	DefaultLookbackDays      = 365
	DefaultMaxOpenConns      = 4

	DefaultAddr            = ":5000"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

type DatasetConfig struct {
	// Path is the SQLite file holding the measurement and station tables.
	Path string `yaml:"path"`

	// MostRecentDate anchors the trailing lookback window (YYYY-MM-DD).
	MostRecentDate string `yaml:"most_recent_date"`

	// MostActiveStation is the station served by /api/v1.0/tobs.
	MostActiveStation string `yaml:"most_active_station"`

	LookbackDays int `yaml:"lookback_days"`
	MaxOpenConns int `yaml:"max_open_conns"`
}

// ReferenceDate parses MostRecentDate. Call after Validate.
func (d DatasetConfig) ReferenceDate() time.Time {
	t, _ := time.Parse(climate.DateLayout, d.MostRecentDate)
	return t
}

// Climate returns the query service settings held in the dataset section.
func (d DatasetConfig) Climate() climate.Config {
	return climate.Config{
		ReferenceDate:     d.ReferenceDate(),
		MostActiveStation: d.MostActiveStation,
		LookbackDays:      d.LookbackDays,
	}
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	// Level is one of debug|info|warn|error.
	Level string `yaml:"level"`

	// Format is text (colourised, for terminals) or json.
	Format string `yaml:"format"`
}

func (l LogConfig) SlogLevel() slog.Level {
	level, _ := parseLogLevel(l.Level)
	return level
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path:              DefaultDatasetPath,
			MostRecentDate:    DefaultMostRecentDate,
			MostActiveStation: DefaultMostActiveStation,
			LookbackDays:      DefaultLookbackDays,
			MaxOpenConns:      DefaultMaxOpenConns,
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("config: dataset.path is required")
	}
	if _, err := time.Parse(climate.DateLayout, c.Dataset.MostRecentDate); err != nil {
		return fmt.Errorf("config: dataset.most_recent_date %q is not YYYY-MM-DD", c.Dataset.MostRecentDate)
	}
	if strings.TrimSpace(c.Dataset.MostActiveStation) == "" {
		return fmt.Errorf("config: dataset.most_active_station is required")
	}
	if c.Dataset.LookbackDays <= 0 {
		return fmt.Errorf("config: dataset.lookback_days must be positive, got %d", c.Dataset.LookbackDays)
	}
	if c.Dataset.MaxOpenConns < 0 {
		return fmt.Errorf("config: dataset.max_open_conns must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("config: server timeouts must not be negative")
	}
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q unknown: want text|json", c.Log.Format)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}
