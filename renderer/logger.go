package renderer

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

// SetLogger configures the logger used by shader hosts and the page.
// Pass nil to restore slog.Default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-mount resource handles and resize events
//   - [slog.LevelInfo]: mount and teardown lifecycle
//   - [slog.LevelError]: context acquisition and program build failures
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(l)
}

// Logger returns the configured logger.
func Logger() *slog.Logger {
	if l := loggerPtr.Load(); l != nil {
		return l
	}
	return slog.Default()
}
