package procwait

import (
	"github.com/giantswarm/procwait/internal/core"
	"github.com/giantswarm/procwait/internal/pidprobe"
	"github.com/giantswarm/procwait/internal/process"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrInterrupted is returned when ctx is done before the child exited or
	// before both of its streams reached end-of-stream. The error also wraps
	// ctx.Err().
	ErrInterrupted = core.ErrInterrupted

	// ErrDrain is returned when reading the child's stdout or stderr failed.
	ErrDrain = core.ErrDrain

	// ErrNonZeroExit is matched by the *ExitError that
	// WaitForSuccessfulCompletion returns for a non-zero exit code.
	ErrNonZeroExit = core.ErrNonZeroExit

	// ErrPoolClosed is returned when a wait is attempted on a closed pool.
	ErrPoolClosed = core.ErrPoolClosed

	// ErrNilChild is returned by the wait functions for a nil Child.
	ErrNilChild = core.ErrNilChild

	// ErrUnsupportedPlatform is returned by IsPidRunning on hosts without a
	// known process-listing tool.
	ErrUnsupportedPlatform = pidprobe.ErrUnsupportedPlatform

	// ErrInvalidPID is returned by IsPidRunning for a pid that is not a
	// positive integer.
	ErrInvalidPID = pidprobe.ErrInvalidPID

	// ErrAlreadyStarted is returned by Start for a command that was already
	// started.
	ErrAlreadyStarted = process.ErrAlreadyStarted

	// ErrOutputAssigned is returned by Start when the command's Stdout or
	// Stderr is already set.
	ErrOutputAssigned = process.ErrOutputAssigned
)

// ExitError reports a non-zero exit from WaitForSuccessfulCompletion.
// Output holds the captured stdout lines, or the stderr lines when stdout
// was empty.
type ExitError = core.ExitError
