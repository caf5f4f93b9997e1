// Package logging constructs the application's structured loggers.
//
// Three formats are supported: "json" and "text" use the standard slog
// handlers; "bracket" uses a compact console handler intended for interactive
// CLI runs.
package logging

import (
	"log/slog"
	"os"

	"github.com/neoledger/neo-export-backend/internal/infrastructure/config"
)

// NewLogger creates a structured logger based on config.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "bracket":
		handler = NewBracketHandler(os.Stdout, opts, cfg.Color)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
