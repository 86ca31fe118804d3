package main

import "fmt"

// Exit codes for CLI errors. A child's own exit code is passed through
// unchanged by "procwait run".
const (
	ExitSuccess     = 0  // Successful execution
	ExitGeneral     = 1  // General error
	ExitInterrupted = 3  // Wait interrupted by a signal or timeout
	ExitConfig      = 4  // Configuration error
	ExitUsage       = 64 // Command line usage error (BSD convention)
)

// CLIError is a user-facing error carrying an exit code and optional hint.
type CLIError struct {
	// Message is shown to the user; empty means the error is silent and
	// only the exit code matters.
	Message string

	// Hint provides guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// exitWith returns a silent CLIError that makes the CLI exit with the
// child's code. Codes outside 1..255, such as -1 for a signaled child, map
// to ExitGeneral.
func exitWith(code int) *CLIError {
	if code <= 0 || code > 255 {
		code = ExitGeneral
	}
	return &CLIError{Code: code}
}
