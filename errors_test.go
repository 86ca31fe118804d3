package procwait_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/giantswarm/procwait"
)

// TestPublicErrorConstants verifies that every exported error constant:
//   - implements the error interface (Error() returns a non-empty string)
//   - matches itself via errors.Is
//   - matches itself when wrapped via fmt.Errorf %w
//   - does not match a different error constant
func TestPublicErrorConstants(t *testing.T) {
	t.Parallel()

	allErrors := map[string]error{
		"ErrAlreadyStarted":      procwait.ErrAlreadyStarted,
		"ErrDrain":               procwait.ErrDrain,
		"ErrInterrupted":         procwait.ErrInterrupted,
		"ErrInvalidPID":          procwait.ErrInvalidPID,
		"ErrNilChild":            procwait.ErrNilChild,
		"ErrNonZeroExit":         procwait.ErrNonZeroExit,
		"ErrOutputAssigned":      procwait.ErrOutputAssigned,
		"ErrPoolClosed":          procwait.ErrPoolClosed,
		"ErrUnsupportedPlatform": procwait.ErrUnsupportedPlatform,
	}

	for name, sentinel := range allErrors {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if sentinel == nil {
				t.Fatalf("%s is nil", name)
			}
			if msg := sentinel.Error(); msg == "" {
				t.Errorf("%s.Error() returned empty string", name)
			}

			if !errors.Is(sentinel, sentinel) {
				t.Errorf("errors.Is(%s, %s) = false, want true (self-match)", name, name)
			}

			wrapped := fmt.Errorf("wrapping: %w", sentinel)
			if !errors.Is(wrapped, sentinel) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", name)
			}

			differentErr := errors.New("some other error")
			if errors.Is(sentinel, differentErr) {
				t.Errorf("errors.Is(%s, errors.New(...)) = true, want false", name)
			}
		})
	}

	// Sentinels must be pairwise distinct.
	for nameA, a := range allErrors {
		for nameB, b := range allErrors {
			if nameA != nameB && errors.Is(a, b) {
				t.Errorf("errors.Is(%s, %s) = true, want false", nameA, nameB)
			}
		}
	}
}

func TestExitErrorMatchesNonZeroExit(t *testing.T) {
	t.Parallel()

	var err error = &procwait.ExitError{Code: 3, Output: []string{"disk full"}}
	if !errors.Is(err, procwait.ErrNonZeroExit) {
		t.Fatalf("errors.Is(%v, ErrNonZeroExit) = false", err)
	}

	var exitErr *procwait.ExitError
	if !errors.As(fmt.Errorf("run: %w", err), &exitErr) || exitErr.Code != 3 {
		t.Fatalf("errors.As did not recover the ExitError: %v", exitErr)
	}
}
