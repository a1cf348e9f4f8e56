// Package logging provides structured logging setup for newsroom.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the default slog logger writing to stdout.
// Dev mode uses human-readable text; prod uses JSON.
func Setup(devMode bool) {
	slog.SetDefault(New(os.Stdout, devMode))
}

// New builds a logger for w using the same handler choice as Setup.
func New(w io.Writer, devMode bool) *slog.Logger {
	var handler slog.Handler
	if devMode {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return slog.New(handler)
}
