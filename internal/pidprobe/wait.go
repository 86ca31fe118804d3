package pidprobe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/procwait/internal/core"
)

// ErrIntervalNotPositive indicates a non-positive poll interval.
const ErrIntervalNotPositive = core.Error("interval must be positive")

// ErrTimeoutNotPositive indicates a non-positive timeout.
const ErrTimeoutNotPositive = core.Error("timeout must be positive")

// WaitConfig configures WaitStopped.
type WaitConfig struct {
	Interval time.Duration // Poll interval
	Timeout  time.Duration // Overall timeout
	Logger   *slog.Logger  // Optional logger (defaults to core.Logger())
}

// WaitStopped polls IsRunning until pid is no longer running, the timeout
// elapses, or a probe fails. A probe error aborts polling.
func WaitStopped(ctx context.Context, cfg WaitConfig, w Waiter, pid string) error {
	return waitStopped(ctx, cfg, func(pollCtx context.Context) (bool, error) {
		return IsRunning(pollCtx, w, pid)
	}, pid)
}

func waitStopped(ctx context.Context, cfg WaitConfig, running func(context.Context) (bool, error), pid string) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("wait for pid %s: %w", pid, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wait for pid %s: %w", pid, ErrTimeoutNotPositive)
	}

	log := cfg.Logger
	if log == nil {
		log = core.Logger()
	}

	// PollUntilContextTimeout calls the condition sequentially, so attempt
	// needs no synchronization.
	attempt := 0
	if err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(pollCtx context.Context) (bool, error) {
			attempt++
			alive, err := running(pollCtx)
			if err != nil {
				return false, err
			}
			if !alive {
				log.Debug("pid stopped", "pid", pid, "attempt", attempt)
			}
			return !alive, nil
		}); err != nil {
		return fmt.Errorf("wait for pid %s to stop: %w", pid, err)
	}
	return nil
}
