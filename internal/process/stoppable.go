package process

import (
	"time"
)

// Compile-time check that *Cmd implements Stoppable.
var _ Stoppable = (*Cmd)(nil)

// Stoppable is a child that can be stopped and have its pipes released.
type Stoppable interface {
	Stop(timeout time.Duration) error
	Close()
}

// StopCloseAndNil stops, closes, and nils a Stoppable pointer in one step.
// It returns nil immediately when p or *p is nil.
//
// P is constrained to both *E and Stoppable so only pointer types can be
// passed and the nil check needs no reflection; E is inferred.
//
// Close and the nil-out run even when Stop fails, and the Stop error is
// returned.
//
// Usage after an abandoned wait:
//
//	var child *process.Cmd
//	// ... start child, WaitFor returns ErrInterrupted ...
//	err := process.StopCloseAndNil(&child, process.DefaultStopTimeout)
func StopCloseAndNil[P interface {
	*E
	Stoppable
}, E any](p *P, timeout time.Duration) error {
	if p == nil || *p == nil {
		return nil
	}
	defer func() {
		(*p).Close()
		*p = nil
	}()
	return (*p).Stop(timeout)
}
