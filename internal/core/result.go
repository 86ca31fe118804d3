package core

import (
	"slices"
	"strings"
)

// Result is the exit code of a child process together with every line it
// wrote to standard output and standard error. A Result is only built after
// both streams reached end-of-stream, so the output is complete as of the
// reported exit. The zero value is an empty result with exit code 0.
type Result struct {
	exitCode int
	stdout   []string
	stderr   []string
}

// NewResult builds a Result from already-frozen line slices. The slices are
// copied so later changes by the caller are not observable.
func NewResult(exitCode int, stdout, stderr []string) Result {
	return Result{
		exitCode: exitCode,
		stdout:   slices.Clone(stdout),
		stderr:   slices.Clone(stderr),
	}
}

// ExitCode returns the child's exit code. It is -1 if the child was
// terminated by a signal.
func (r Result) ExitCode() int {
	return r.exitCode
}

// Stdout returns a copy of the captured standard output lines.
func (r Result) Stdout() []string {
	return slices.Clone(r.stdout)
}

// Stderr returns a copy of the captured standard error lines.
func (r Result) Stderr() []string {
	return slices.Clone(r.stderr)
}

// Output returns the standard output lines joined with newlines.
func (r Result) Output() string {
	return strings.Join(r.stdout, "\n")
}

// Success reports whether the exit code is 0.
func (r Result) Success() bool {
	return r.exitCode == 0
}

// diagnostic returns stdout, or stderr when stdout is empty.
func (r Result) diagnostic() []string {
	if len(r.stdout) == 0 {
		return slices.Clone(r.stderr)
	}
	return slices.Clone(r.stdout)
}
