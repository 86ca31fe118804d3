package procwait

import (
	"log/slog"

	"github.com/giantswarm/procwait/internal/core"
)

// SetLogger replaces the package-level logger used by procwait.
// The provided logger should already have any desired attributes; procwait
// will not add more.
//
// If l is nil, the logger resets to slog.Default() with a "component"
// attribute, re-derived on the next use. Call SetLogger(nil) after
// slog.SetDefault() to pick up the change.
//
// SetLogger is safe to call concurrently with other procwait operations.
// Waiters built with WithLogger keep their own logger.
//
// Example:
//
//	procwait.SetLogger(myLogger.With("component", "procwait"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
