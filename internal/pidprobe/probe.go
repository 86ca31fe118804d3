// Package pidprobe answers whether a process ID belongs to a live process
// by running the platform's process-listing tool as a child and scanning
// its output.
package pidprobe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"unicode"

	"github.com/giantswarm/procwait/internal/core"
	"github.com/giantswarm/procwait/internal/platform"
	"github.com/giantswarm/procwait/internal/process"
)

// ErrUnsupportedPlatform is returned when the host has no known way to list
// processes.
const ErrUnsupportedPlatform = core.Error("cannot check pid on this platform")

// ErrInvalidPID is returned for an empty, non-numeric or non-positive pid.
const ErrInvalidPID = core.Error("pid must be a positive integer")

// psNoMatch is the exit code ps(1) uses when no process matched -p.
const psNoMatch = 1

// Waiter runs the probe command to completion. *core.Waiter satisfies it.
type Waiter interface {
	WaitForSuccessfulCompletion(ctx context.Context, child core.Child) (core.Result, error)
}

// IsRunning reports whether pid names a running process on this host.
//
// Unix-like hosts run "ps -p <pid> -o pid=", Windows runs TASKLIST with a
// PID filter. The pid counts as running when a line of the tool's stdout
// carries it as a whole field.
func IsRunning(ctx context.Context, w Waiter, pid string) (bool, error) {
	return isRunning(ctx, w, platform.Current(), pid)
}

func isRunning(ctx context.Context, w Waiter, p platform.Platform, pid string) (bool, error) {
	pid, err := normalizePID(pid)
	if err != nil {
		return false, err
	}
	cmd, err := probeCommand(p, pid)
	if err != nil {
		return false, err
	}

	child, err := process.Start(cmd, core.Logger())
	if err != nil {
		return false, fmt.Errorf("start pid probe: %w", err)
	}
	// No-op after a completed wait; tears the probe down after an
	// interrupted one.
	defer func() {
		_ = process.StopCloseAndNil(&child, process.DefaultStopTimeout)
	}()

	res, err := w.WaitForSuccessfulCompletion(ctx, child)
	return interpret(p, pid, res, err)
}

// interpret turns the probe's outcome into a liveness answer.
func interpret(p platform.Platform, pid string, res core.Result, err error) (bool, error) {
	if err != nil {
		var exitErr *core.ExitError
		if p.IsUnixLike() && errors.As(err, &exitErr) && exitErr.Code == psNoMatch {
			return false, nil
		}
		return false, fmt.Errorf("probe pid %s: %w", pid, err)
	}
	for _, line := range res.Stdout() {
		if hasField(line, pid) {
			return true, nil
		}
	}
	return false, nil
}

// normalizePID validates pid and returns its canonical decimal form.
func normalizePID(pid string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(pid))
	if err != nil || n <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPID, pid)
	}
	return strconv.Itoa(n), nil
}

func probeCommand(p platform.Platform, pid string) (*exec.Cmd, error) {
	switch {
	case p.IsUnixLike():
		return exec.Command("ps", "-p", pid, "-o", "pid="), nil
	case p.IsWindows():
		return exec.Command("TASKLIST", "/fi", "PID eq "+pid, "/fo", "csv", "/nh"), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
}

// hasField reports whether pid appears in line delimited by whitespace,
// commas or quotes. Substring matches such as 12 in 4123 do not count.
func hasField(line, pid string) bool {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == '"' || unicode.IsSpace(r)
	})
	for _, f := range fields {
		if f == pid {
			return true
		}
	}
	return false
}
