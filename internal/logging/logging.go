// Package logging builds the slog loggers shared by the watchdog daemon and
// CLI. Subsystems derive child loggers with .With("component", name), so one
// stream carries scheduler, cache, store and API output side by side.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the output shape of a logger.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	// Format is "json" for structured output; anything else means text.
	Format string

	// Writer receives the log stream. Nil means stderr; stdout stays
	// reserved for command output.
	Writer io.Writer
}

// New builds a logger from opts.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
