// Package logging configures the process-wide log/slog logger.
//
// Text output is colored with tint for local development; json output is
// meant for log shippers.
//
// Usage:
//
//	logging.Setup(logging.Options{Level: "debug"})
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Common attribute keys.
const (
	KeyError     = "error"
	KeyUserID    = "user_id"
	KeyGroupID   = "group_id"
	KeyExpenseID = "expense_id"
	KeyProcedure = "procedure"
	KeyDuration  = "duration_ms"
)

// Options selects level and format. Zero values mean info level, colored text on stderr.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
	// NoColor disables ANSI colors in text output.
	NoColor bool
}

// New builds a logger without installing it.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(opts.Level)

	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
		NoColor:    opts.NoColor,
	}))
}

// Setup installs a logger built from opts as the slog default and returns it.
func Setup(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
