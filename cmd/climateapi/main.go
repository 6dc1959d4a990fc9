package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/climateapi/internal/api"
	"github.com/lox/climateapi/internal/climate"
	"github.com/lox/climateapi/internal/config"
	"github.com/lox/climateapi/internal/logging"
	"github.com/lox/climateapi/internal/store"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

type CLI struct {
	Config    string `help:"Path to a YAML config file." type:"path" env:"CLIMATEAPI_CONFIG"`
	DB        string `help:"Path to the SQLite dataset (overrides config)." env:"CLIMATEAPI_DB"`
	LogLevel  string `help:"Log level: debug, info, warn or error." env:"CLIMATEAPI_LOG_LEVEL"`
	LogFormat string `help:"Log format: text or json." env:"CLIMATEAPI_LOG_FORMAT"`

	Serve ServeCmd `cmd:"" default:"withargs" help:"Serve the climate API over HTTP."`
	Check CheckCmd `cmd:"" help:"Validate the dataset and report its contents."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("climateapi"),
		kong.Description("Read-only HTTP API over the Hawaii climate dataset."),
		kong.UsageOnError(),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	if err := kctx.Run(&cli); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// load merges the config file (or defaults) with command line overrides and
// installs the process logger.
func (c *CLI) load() (*config.Config, error) {
	cfg := config.Default()
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.DB != "" {
		cfg.Dataset.Path = c.DB
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Log.SlogLevel(), cfg.Log.Format, version))
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(ctx, store.Options{
		Path:         cfg.Dataset.Path,
		MaxOpenConns: cfg.Dataset.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	slog.Info("dataset opened", "path", st.Path())
	return st, nil
}

// checkAnchor compares the configured reference date with the newest date in
// the dataset. A mismatch is reported, never corrected.
func checkAnchor(ctx context.Context, log *slog.Logger, st *store.Store, cfg *config.Config) error {
	sum, err := st.Summary(ctx)
	if err != nil {
		return err
	}
	log.Info("dataset summary",
		"measurements", sum.Measurements,
		"stations", sum.Stations,
		"first_date", sum.FirstDate.String,
		"last_date", sum.LastDate.String,
	)
	if sum.LastDate.Valid && sum.LastDate.String != cfg.Dataset.MostRecentDate {
		log.Warn("configured most_recent_date differs from dataset",
			"configured", cfg.Dataset.MostRecentDate,
			"dataset", sum.LastDate.String,
		)
	}
	return nil
}

type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)." env:"CLIMATEAPI_ADDR"`
}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := checkAnchor(ctx, slog.Default(), st, cfg); err != nil {
		return err
	}

	svc := climate.New(st, cfg.Dataset.Climate())
	server := api.NewServer(svc, st, api.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	slog.Info("starting server",
		"version", version,
		"reference_date", cfg.Dataset.MostRecentDate,
		"most_active_station", cfg.Dataset.MostActiveStation,
		"lookback_start", svc.LookbackStart(),
	)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("shutdown complete")
	return nil
}

type CheckCmd struct{}

func (c *CheckCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := checkAnchor(ctx, slog.Default(), st, cfg); err != nil {
		return err
	}
	slog.Info("dataset ok")
	return nil
}
