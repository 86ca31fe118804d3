package procwait

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/giantswarm/procwait/internal/core"
	"github.com/giantswarm/procwait/internal/pidprobe"
	"github.com/giantswarm/procwait/internal/platform"
	"github.com/giantswarm/procwait/internal/process"
)

// Compile-time interface satisfaction checks.
var (
	_ Waiter = (*waiterWrapper)(nil)
	_ Child  = (*Cmd)(nil)
)

// defaultPool is sized at DefaultPoolSize and created on first use. It is
// never closed; idle workers are parked goroutines reclaimed at exit.
var defaultPool = sync.OnceValue(func() *Pool {
	return core.NewPool(core.DefaultPoolSize())
})

// defaultWaiter backs the package-level functions.
var defaultWaiter = sync.OnceValue(func() Waiter {
	return NewWaiter()
})

// DefaultPool returns the shared execution pool. Waiters created without
// WithPool or WithPoolSize use it. Do not close it.
func DefaultPool() *Pool {
	return defaultPool()
}

// DefaultPoolSize returns the size of the shared pool: twice the number of
// logical CPUs.
func DefaultPoolSize() int {
	return core.DefaultPoolSize()
}

// NewPool creates a pool with size resident workers. The caller closes it.
// Panics if size <= 0.
func NewPool(size int) *Pool {
	return core.NewPool(size)
}

// RegisterPoolMetrics publishes p's size and resident/overflow task counts
// as observable instruments on mp. Unregister the returned Registration
// before closing p.
func RegisterPoolMetrics(mp metric.MeterProvider, p *Pool) (metric.Registration, error) {
	return core.RegisterPoolMetrics(mp, p)
}

// Default returns the Waiter used by the package-level functions. It runs
// on DefaultPool and the package-level logger.
//
//nolint:ireturn // Returns Waiter interface by design for testability (mockable).
func Default() Waiter {
	return defaultWaiter()
}

// waiterWrapper wraps core.Waiter to implement the Waiter interface.
//
// The core.Waiter is stored as a named (unexported) field rather than
// embedded so callers cannot reach it through type assertions.
type waiterWrapper struct {
	w *core.Waiter
}

// NewWaiter returns a Waiter configured by opts.
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns Waiter interface by design for testability (mockable).
func NewWaiter(opts ...Option) Waiter {
	cfg := defaultWaiterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &waiterWrapper{w: core.NewWaiter(cfg.toCoreConfig())}
}

func (w *waiterWrapper) WaitFor(ctx context.Context, child Child) (Result, error) {
	return w.w.WaitFor(ctx, child)
}

func (w *waiterWrapper) WaitForSuccessfulCompletion(ctx context.Context, child Child) (Result, error) {
	return w.w.WaitForSuccessfulCompletion(ctx, child)
}

func (w *waiterWrapper) WaitForAll(ctx context.Context, children ...Child) ([]Result, error) {
	return w.w.WaitForAll(ctx, children...)
}

func (w *waiterWrapper) IsPidRunning(ctx context.Context, pid string) (bool, error) {
	return pidprobe.IsRunning(ctx, w.w, pid)
}

func (w *waiterWrapper) WaitPidStopped(ctx context.Context, pid string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultPidWaitTimeout
	}
	cfg := pidprobe.WaitConfig{
		Interval: DefaultPidPollInterval,
		Timeout:  timeout,
	}
	return pidprobe.WaitStopped(ctx, cfg, w.w, pid)
}

func (w *waiterWrapper) Pool() *Pool {
	return w.w.Pool()
}

// WaitFor waits for child on the default Waiter. See Waiter.WaitFor.
func WaitFor(ctx context.Context, child Child) (Result, error) {
	return Default().WaitFor(ctx, child)
}

// WaitForSuccessfulCompletion waits for child on the default Waiter and
// reports a non-zero exit as an *ExitError.
// See Waiter.WaitForSuccessfulCompletion.
func WaitForSuccessfulCompletion(ctx context.Context, child Child) (Result, error) {
	return Default().WaitForSuccessfulCompletion(ctx, child)
}

// WaitForAll waits for every child on the default Waiter.
func WaitForAll(ctx context.Context, children ...Child) ([]Result, error) {
	return Default().WaitForAll(ctx, children...)
}

// IsPidRunning reports whether pid names a live process on this host.
func IsPidRunning(ctx context.Context, pid string) (bool, error) {
	return Default().IsPidRunning(ctx, pid)
}

// WaitPidStopped blocks until pid is no longer running or timeout elapses.
func WaitPidStopped(ctx context.Context, pid string, timeout time.Duration) error {
	return Default().WaitPidStopped(ctx, pid, timeout)
}

// Cmd is a child started by Start. Its stdout and stderr are pipes that
// only the drains read, so waiting for exit never closes them early.
type Cmd = process.Cmd

// Start starts cmd with its stdout and stderr connected to new pipes and
// returns it as a Child. cmd.Stdout and cmd.Stderr must be unset.
//
// The caller must pass the result to one of the wait functions, or Close
// it, so the pipes are released.
func Start(cmd *exec.Cmd) (*Cmd, error) {
	return process.Start(cmd, core.Logger())
}

// StopCloseAndNil stops *c (SIGTERM, then SIGKILL), closes its pipes and
// sets *c to nil. Use it after an interrupted wait. A nil c or *c is a
// no-op.
func StopCloseAndNil(c **Cmd, timeout time.Duration) error {
	return process.StopCloseAndNil(c, timeout)
}

// Command returns an *exec.Cmd for name and args. Outside Windows the
// child's environment sources ~/.bash_profile through BASH_ENV.
func Command(name string, args ...string) *exec.Cmd {
	return platform.Command(name, args...)
}

// ShellCommand returns a command that runs line through /bin/sh -c, so
// pipes work. On Windows line is split on whitespace instead.
func ShellCommand(line string) *exec.Cmd {
	return platform.ShellCommand(line)
}

// ReadLines reads a single stream, such as a Cmd's Stdout, to
// end-of-stream on the calling goroutine and returns its lines. Lines end
// at "\n", "\r" or "\r\n". A read failure returns the lines read so far
// with an error matching ErrDrain.
//
// Reading one stream alone can deadlock if the child fills the other
// pipe; prefer WaitFor unless the other stream is known to be quiet.
func ReadLines(r io.Reader) ([]string, error) {
	return core.ReadLines(r)
}

// CurrentPID returns the pid of the calling process as a decimal string.
func CurrentPID() string {
	return strconv.Itoa(os.Getpid())
}
