package procwait

import (
	"time"

	"github.com/giantswarm/procwait/internal/process"
)

// Default values for waits and teardown. They are exported so callers can
// build custom values relative to them.
const (
	// DefaultStopTimeout bounds StopCloseAndNil and Cmd.Stop: SIGTERM first,
	// SIGKILL once the grace period ends.
	DefaultStopTimeout = process.DefaultStopTimeout

	// DefaultPidPollInterval is how often WaitPidStopped probes the pid.
	DefaultPidPollInterval = 100 * time.Millisecond

	// DefaultPidWaitTimeout is the timeout WaitPidStopped uses when the
	// caller passes zero.
	DefaultPidWaitTimeout = 30 * time.Second
)
