package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

const appName = "climateapi"

// New builds the process logger. The text format is colourised for terminals;
// json is for log shippers.
func New(w io.Writer, level slog.Level, format, version string) *slog.Logger {
	if format == "json" {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
		return slog.New(h).With(
			"app", appName,
			"version", version,
		)
	}

	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  level == slog.LevelDebug,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h).With("app", appName)
}
