package process

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// DefaultStopTimeout bounds Stop when the caller has no better value.
const DefaultStopTimeout = 10 * time.Second

// termGracePeriod is how long a child gets after SIGTERM before SIGKILL.
// It is capped at the overall timeout.
const termGracePeriod = 5 * time.Second

// killDrainTimeout bounds the wait for the reaper goroutine after SIGKILL
// has been sent. SIGKILL cannot be caught, so this only fires if wait(2)
// itself is stuck.
const killDrainTimeout = 10 * time.Second

// Stop terminates the child: SIGTERM first, SIGKILL after a grace period,
// and then waits up to timeout (plus killDrainTimeout) for it to be reaped.
// Exits caused by SIGTERM or SIGKILL count as a clean stop. Returns nil
// immediately if the child has already exited.
//
// On platforms without SIGTERM (Windows) the child is killed outright.
func (c *Cmd) Stop(timeout time.Duration) error {
	select {
	case <-c.exited:
		return nil
	default:
	}

	if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Either the child exited in the meantime or the platform cannot
		// deliver SIGTERM; Kill covers both.
		_ = c.cmd.Process.Kill()
		if !awaitExit(c.exited, killDrainTimeout) {
			return fmt.Errorf("%s: timed out waiting for exit after kill", c.name)
		}
		return expectSignalExit(c.waitErr, c.name)
	}

	grace := min(termGracePeriod, timeout)
	killTimer := time.AfterFunc(grace, func() {
		// Kill after the child is reaped returns "process already
		// finished", which is harmless.
		_ = c.cmd.Process.Kill()
	})
	defer killTimer.Stop()

	totalTimer := time.NewTimer(timeout)
	defer totalTimer.Stop()

	select {
	case <-c.exited:
		return expectSignalExit(c.waitErr, c.name)
	case <-totalTimer.C:
		_ = c.cmd.Process.Kill()
		if !awaitExit(c.exited, killDrainTimeout) {
			return fmt.Errorf("%s: timed out waiting for exit after SIGKILL", c.name)
		}
		if err := expectSignalExit(c.waitErr, c.name); err != nil {
			return fmt.Errorf("%s stop timeout: %w", c.name, err)
		}
		return nil
	}
}

// awaitExit reports whether exited was closed within timeout.
func awaitExit(exited <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-exited:
		return true
	case <-t.C:
		return false
	}
}

// expectSignalExit interprets the cmd.Wait error after a stop request.
// A normal exit, or death by SIGTERM or SIGKILL, is a successful stop.
// A non-zero exit status is also accepted: many programs exit 1 or 143 on
// SIGTERM after cleaning up.
func expectSignalExit(err error, name string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status, ok := exitErr.Sys().(syscall.WaitStatus)
		if !ok || !status.Signaled() {
			return nil
		}
		sig := status.Signal()
		if sig == syscall.SIGTERM || sig == syscall.SIGKILL {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}
