package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds a JSON logger for startup and infrastructure events.
// slog keeps the standard library feel while still emitting structured
// logs we can ship anywhere.
func NewLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func levelFromString(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
