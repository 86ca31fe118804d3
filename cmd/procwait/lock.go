package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is the pause between attempts to take the run lock.
const lockRetryInterval = 50 * time.Millisecond

// acquireRunLock takes an exclusive lock on path, retrying until it is
// free or ctx is done. Missing parent directories are created.
func acquireRunLock(ctx context.Context, path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory for %s: %w", path, err)
	}
	fl := flock.New(path)

	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("acquire lock %s: lock not acquired", path)
	}
	return fl, nil
}

// releaseRunLock unlocks and closes fl. The lock file stays on disk so a
// concurrent holder's lock is never invalidated by a removal.
func releaseRunLock(log *slog.Logger, fl *flock.Flock) {
	if fl == nil {
		return
	}
	if err := fl.Close(); err != nil {
		log.Debug("release run lock", "path", fl.Path(), "error", err)
	}
}
