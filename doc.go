// Package procwait waits for child processes while draining their output.
//
// A child that writes more than the operating system's pipe buffer blocks
// until someone reads, so waiting for its exit before reading can deadlock.
// procwait reads standard output and standard error on a shared execution
// pool while the caller blocks on the exit, and returns only once both
// streams have reached end-of-stream.
//
// # Basic Usage
//
//	import "github.com/giantswarm/procwait"
//
//	ctx := context.Background()
//
//	child, err := procwait.Start(procwait.ShellCommand("make test | tee log"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer child.Close()
//
//	res, err := procwait.WaitFor(ctx, child)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.ExitCode(), res.Stdout())
//
// # Strict Completion
//
// WaitForSuccessfulCompletion turns a non-zero exit into an *ExitError that
// carries the captured output, so the failure reason travels with the error:
//
//	_, err := procwait.WaitForSuccessfulCompletion(ctx, child)
//	if errors.Is(err, procwait.ErrNonZeroExit) {
//	    // err.Error() includes stdout, or stderr when stdout was empty
//	}
//
// # Interruption
//
// Canceling ctx stops the wait and returns an error wrapping ErrInterrupted.
// The child and its drains are left running; stop and release them with
// StopCloseAndNil:
//
//	if errors.Is(err, procwait.ErrInterrupted) {
//	    _ = procwait.StopCloseAndNil(&child, procwait.DefaultStopTimeout)
//	}
//
// # Liveness
//
// IsPidRunning asks ps(1), or TASKLIST on Windows, whether a pid is alive.
// Other platforms return ErrUnsupportedPlatform.
package procwait
