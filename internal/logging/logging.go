// Package logging configures colored structured logging with tint.
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/muesli/termenv"
)

// Setup configures logging at the level named by LOG_LEVEL, falling back to
// fallback when the variable is unset or unknown.
func Setup(fallback string) {
	level, ok := ParseLevel(os.Getenv("LOG_LEVEL"))
	if !ok {
		level, _ = ParseLevel(fallback)
	}
	SetupWithLevel(level)
}

// SetupWithLevel configures colored logging on stderr at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level)))
}

// NewHandler returns a tint handler writing to w. Color is disabled when w
// is not a color-capable terminal.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
		NoColor:    termenv.NewOutput(w).Profile == termenv.Ascii,
	})
}

// ParseLevel maps a level name to a slog.Level. The second result is false
// for empty or unknown names, which map to INFO.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
