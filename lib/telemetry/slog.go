package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog configures the process-wide logger. Verbose lowers the
// level to debug.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
