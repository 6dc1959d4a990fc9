package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := cfg.Dataset.ReferenceDate().Format("2006-01-02"); got != "2017-08-23" {
		t.Errorf("ReferenceDate = %s, want 2017-08-23", got)
	}
	if cfg.Dataset.MostActiveStation != "USC00519281" {
		t.Errorf("MostActiveStation = %q, want USC00519281", cfg.Dataset.MostActiveStation)
	}
	if cfg.Log.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v, want info", cfg.Log.SlogLevel())
	}
}

func TestLoad_PartialOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `dataset:
  path: /data/climate.sqlite
  most_recent_date: "2018-01-31"
server:
  addr: ":8080"
  shutdown_timeout: 15s
log:
  level: debug
  format: json
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dataset.Path != "/data/climate.sqlite" {
		t.Errorf("dataset.path: got %q", cfg.Dataset.Path)
	}
	if cfg.Dataset.MostRecentDate != "2018-01-31" {
		t.Errorf("dataset.most_recent_date: got %q", cfg.Dataset.MostRecentDate)
	}
	if cfg.Dataset.MostActiveStation != DefaultMostActiveStation {
		t.Errorf("dataset.most_active_station: got %q, want default", cfg.Dataset.MostActiveStation)
	}
	if cfg.Dataset.LookbackDays != DefaultLookbackDays {
		t.Errorf("dataset.lookback_days: got %d, want %d", cfg.Dataset.LookbackDays, DefaultLookbackDays)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr: got %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("server.shutdown_timeout: got %v, want 15s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("server.read_timeout: got %v, want default", cfg.Server.ReadTimeout)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug || cfg.Log.Format != "json" {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad date", "dataset:\n  most_recent_date: 08/23/2017\n", "most_recent_date"},
		{"empty station", "dataset:\n  most_active_station: \"\"\n", "most_active_station"},
		{"zero lookback", "dataset:\n  lookback_days: 0\n", "lookback_days"},
		{"bad level", "log:\n  level: loud\n", "invalid log level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"malformed yaml", "dataset: [\n", "parse yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDatasetConfig_Climate(t *testing.T) {
	cfg := writeConfig(t, `
dataset:
  path: hawaii.sqlite
  most_recent_date: "2017-01-31"
  most_active_station: USC00513117
  lookback_days: 30
`)
	loaded, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := loaded.Dataset.Climate()
	if want := time.Date(2017, time.January, 31, 0, 0, 0, 0, time.UTC); !got.ReferenceDate.Equal(want) {
		t.Errorf("ReferenceDate = %v, want %v", got.ReferenceDate, want)
	}
	if got.MostActiveStation != "USC00513117" {
		t.Errorf("MostActiveStation = %q, want USC00513117", got.MostActiveStation)
	}
	if got.LookbackDays != 30 {
		t.Errorf("LookbackDays = %d, want 30", got.LookbackDays)
	}
}
