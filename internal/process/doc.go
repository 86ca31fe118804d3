// Package process starts child processes with caller-owned output pipes and
// manages their lifecycle.
//
// It defines Cmd, a started *exec.Cmd whose stdout and stderr can be read
// to end-of-stream independently of waiting for exit, the SIGTERM-then-
// SIGKILL Stop sequence, the Stoppable interface, and StopCloseAndNil for
// one-step teardown.
package process
