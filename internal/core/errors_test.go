package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorsIs(t *testing.T) {
	t.Parallel()

	const sentinel = Error("not found")

	tests := map[string]struct {
		err  error
		want bool
	}{
		"direct match":               {err: sentinel, want: true},
		"wrapped match":              {err: fmt.Errorf("op: %w", sentinel), want: true},
		"different sentinel":         {err: Error("other"), want: false},
		"same text from errors.New":  {err: errors.New("not found"), want: false},
		"unrelated wrapped sentinel": {err: fmt.Errorf("%w: x", ErrInterrupted), want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := errors.Is(tc.err, sentinel); got != tc.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tc.err, sentinel, got, tc.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	err := error(&ExitError{Code: 1, Output: []string{"boom", "bang"}})

	if got, want := err.Error(), "exit status 1: [boom, bang]"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNonZeroExit) {
		t.Error("ExitError should match ErrNonZeroExit")
	}
	if !errors.Is(fmt.Errorf("probe: %w", err), ErrNonZeroExit) {
		t.Error("wrapped ExitError should match ErrNonZeroExit")
	}
	if errors.Is(err, ErrInterrupted) {
		t.Error("ExitError must not match unrelated sentinels")
	}
}
