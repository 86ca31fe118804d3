package core

import (
	"fmt"
	"strings"
)

// Compile-time checks that the error types implement error.
var (
	_ error = Error("")
	_ error = (*ExitError)(nil)
)

// Error is a string-backed error type so sentinel errors can be declared as
// constants. errors.Is works through wrapped chains because Error is
// comparable.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}

const (
	// ErrInterrupted is returned when the wait for process exit or for the
	// output drains is abandoned because the context was canceled.
	ErrInterrupted = Error("wait interrupted")

	// ErrDrain is returned when reading one of the child's output streams
	// fails with anything other than end-of-stream.
	ErrDrain = Error("draining process output failed")

	// ErrNonZeroExit is matched by the *ExitError returned from
	// WaitForSuccessfulCompletion.
	ErrNonZeroExit = Error("process exited with non-zero status")

	// ErrPoolClosed is returned by Submit after Close.
	ErrPoolClosed = Error("execution pool is closed")

	// ErrNilChild is returned when a nil Child is passed to the waiter.
	ErrNilChild = Error("child process must not be nil")
)

// ExitError reports a child that exited with a non-zero status under
// WaitForSuccessfulCompletion. Output holds the captured standard output,
// or standard error when nothing was written to standard output, so the
// failure can be diagnosed after the streams are gone.
type ExitError struct {
	Code   int
	Output []string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d: [%s]", e.Code, strings.Join(e.Output, ", "))
}

// Is reports ErrNonZeroExit as a match so callers need not type-assert.
func (e *ExitError) Is(target error) bool {
	return target == ErrNonZeroExit
}
