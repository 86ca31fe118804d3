package procwait

import (
	"context"
	"time"

	"github.com/giantswarm/procwait/internal/core"
)

// Child is a running child process: the parent's read ends of its stdout
// and stderr pipes, and a way to wait for its exit code. *Cmd returned by
// Start implements it.
//
// The streams are read until end-of-stream and closed when they implement
// io.Closer. Wait must return the exit code once the child has exited, or
// ctx's error if ctx is done first.
type Child = core.Child

// Result is a child's exit code with every line it wrote to stdout and
// stderr, in order. It is immutable.
type Result = core.Result

// Pool is the execution pool drain workers run on. Submitting never waits
// for a busy worker: when every resident worker is busy the drain gets its
// own goroutine.
type Pool = core.Pool

// Waiter waits for child processes while draining their output.
// All methods are safe for concurrent use.
type Waiter interface {
	// WaitFor drains child's stdout and stderr while blocking until it
	// exits, then blocks until both streams have reached end-of-stream.
	// A non-zero exit code is not an error.
	//
	// Returns an error wrapping ErrInterrupted if ctx is done first, and
	// one wrapping ErrDrain if reading either stream failed. No partial
	// Result is returned in either case.
	WaitFor(ctx context.Context, child Child) (Result, error)

	// WaitForSuccessfulCompletion is WaitFor, except that a non-zero exit
	// is returned as an *ExitError matching ErrNonZeroExit. Its message
	// carries the captured stdout, or stderr when stdout is empty. The
	// Result is returned alongside the *ExitError.
	WaitForSuccessfulCompletion(ctx context.Context, child Child) (Result, error)

	// WaitForAll waits for every child concurrently and returns their
	// Results in argument order. The first failure interrupts the rest.
	WaitForAll(ctx context.Context, children ...Child) ([]Result, error)

	// IsPidRunning reports whether pid names a live process on this host.
	// The probe runs as a child of this Waiter.
	IsPidRunning(ctx context.Context, pid string) (bool, error)

	// WaitPidStopped polls IsPidRunning until pid is gone or timeout
	// elapses. A zero timeout means DefaultPidWaitTimeout.
	WaitPidStopped(ctx context.Context, pid string, timeout time.Duration) error

	// Pool returns the pool the Waiter's drains run on.
	Pool() *Pool
}
