package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/procwait"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		strict   bool
		lockPath string
	)

	cmd := &cobra.Command{
		Use:   "run [--strict] [--lock file] [--] command [args...]",
		Short: "Run a command, drain its output, and exit with its exit code",
		Example: `  procwait run -- make test
  procwait run --strict -- /bin/sh -c 'ps aux | grep sshd'
  procwait run --lock /tmp/deploy.lock -- ./deploy.sh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			if lockPath != "" {
				fl, err := acquireRunLock(cmd.Context(), lockPath)
				if err != nil {
					code := ExitGeneral
					if cmd.Context().Err() != nil {
						code = ExitInterrupted
					}
					return &CLIError{Message: "run lock", Cause: err, Code: code}
				}
				defer releaseRunLock(a.log, fl)
				a.log.Debug("run lock acquired", "path", lockPath)
			}

			child, err := procwait.Start(procwait.Command(args[0], args[1:]...))
			if err != nil {
				return &CLIError{Message: "start " + args[0], Cause: err, Code: ExitGeneral}
			}
			defer func() {
				select {
				case <-child.Exited():
				default:
					a.log.Info("stopping child", "process", child.Name(), "pid", child.Pid())
				}
				if err := procwait.StopCloseAndNil(&child, procwait.DefaultStopTimeout); err != nil {
					a.log.Warn("stop child", "error", err)
				}
			}()

			a.log.Debug("child started", "process", child.Name(), "pid", child.Pid())

			wait := a.waiter.WaitFor
			if strict {
				wait = a.waiter.WaitForSuccessfulCompletion
			}
			res, err := wait(cmd.Context(), child)

			var exitErr *procwait.ExitError
			switch {
			case errors.As(err, &exitErr):
				printResult(cmd, res)
				return &CLIError{Message: exitErr.Error(), Code: exitWith(exitErr.Code).Code}
			case errors.Is(err, procwait.ErrInterrupted):
				return &CLIError{Message: "wait interrupted", Cause: err, Code: ExitInterrupted}
			case err != nil:
				return &CLIError{Message: "wait for " + args[0], Cause: err, Code: ExitGeneral}
			}

			printResult(cmd, res)
			if res.ExitCode() != 0 {
				return exitWith(res.ExitCode())
			}
			return nil
		},
	}

	// Flags after the command name belong to the child.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&strict, "strict", false, "treat a non-zero exit as an error and report its output")
	cmd.Flags().StringVar(&lockPath, "lock", "", "hold an exclusive lock on this file while the command runs")
	return cmd
}

// printResult writes the captured stdout and stderr lines to the matching
// streams and ends with the exit code on stderr.
func printResult(cmd *cobra.Command, res procwait.Result) {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	for _, line := range res.Stdout() {
		fmt.Fprintln(out, line)
	}
	for _, line := range res.Stderr() {
		fmt.Fprintln(errOut, line)
	}
	fmt.Fprintf(errOut, "exit code: %d\n", res.ExitCode())
}

