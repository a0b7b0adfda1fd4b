package log

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger installs l as the process-wide logger. The slog default
// is pointed at the same handler so third-party slog output lands in the
// same stream.
func SetDefaultLogger(l *Logger) {
	defaultLogger.Store(l)
	slog.SetDefault(l.slog)
}

// DefaultLogger returns the logger installed by SetDefaultLogger, or a
// logger with DefaultConfig when none was installed.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return Default()
}
