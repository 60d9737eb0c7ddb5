package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupSlog configures the default [slog.Logger] at the given level. An empty
// level means "info".
func SetupSlog(level string) error {
	var l slog.Level

	switch level {
	case "", "info":
		l = slog.LevelInfo
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))

	return nil
}
