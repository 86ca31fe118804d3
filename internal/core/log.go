package core

import (
	"log/slog"
	"sync/atomic"
)

// logger holds a caller-supplied logger. Nil means none was set and Logger
// falls back to defaultLogger.
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches slog.Default() with the procwait component attribute
// so hot paths (every drain and every wait) do not allocate a new logger.
// SetLogger(nil) clears the cache so a later slog.SetDefault is picked up.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the package-level logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := slog.Default().With("component", "procwait")
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

// SetLogger replaces the package-level logger. A nil l restores the default
// derived from slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
