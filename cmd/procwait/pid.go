package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/procwait"
)

func newPidCmd(a *app) *cobra.Command {
	var (
		waitStopped bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pid <pid>",
		Short: "Report whether a process ID is running",
		Example: `  procwait pid 4123
  procwait pid 4123 --wait-stopped --timeout 1m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			pid := args[0]

			if waitStopped {
				if err := a.waiter.WaitPidStopped(cmd.Context(), pid, timeout); err != nil {
					return pidError(cmd.Context(), pid, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "stopped")
				return nil
			}

			running, err := a.waiter.IsPidRunning(cmd.Context(), pid)
			if err != nil {
				return pidError(cmd.Context(), pid, err)
			}
			if running {
				fmt.Fprintln(cmd.OutOrStdout(), "running")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "stopped")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&waitStopped, "wait-stopped", false, "block until the pid is no longer running")
	cmd.Flags().DurationVar(&timeout, "timeout", procwait.DefaultPidWaitTimeout, "maximum time for --wait-stopped")
	return cmd
}

func pidError(ctx context.Context, pid string, err error) *CLIError {
	code := ExitGeneral
	switch {
	case ctx.Err() != nil:
		code = ExitInterrupted
	case errors.Is(err, procwait.ErrInvalidPID):
		code = ExitUsage
	case errors.Is(err, procwait.ErrUnsupportedPlatform):
		code = ExitConfig
	}
	return &CLIError{Message: "check pid " + pid, Cause: err, Code: code}
}
