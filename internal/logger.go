package internal

import (
	"log/slog"
	"os"
	"strings"
)

// GetLoggingHandler initializes a slog.Handler based on the provided logging level
// and format options.
func GetLoggingHandler(level string, json bool) slog.Handler {
	var logLevel = new(slog.LevelVar)

	switch strings.ToLower(level) {
	case "trace", "debug":
		logLevel.Set(slog.LevelDebug)
	case "info", "information":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	// log output goes to stderr, stdout stays free for tooling
	output := os.Stderr

	if json {
		return slog.NewJSONHandler(output, opts)
	}
	return slog.NewTextHandler(output, opts)
}

// SetupLogging initializes the global logger with the given level and format.
func SetupLogging(level string, json bool) {
	slog.SetDefault(slog.New(GetLoggingHandler(level, json)))
}
