// Command procwait runs a child process, waits for it while draining its
// output, and reports what it wrote. It also answers whether a pid is
// still alive.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return handleError(stderr, err)
	}
	return ExitSuccess
}

// handleError prints err and returns the exit code it maps to.
func handleError(w io.Writer, err error) int {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if msg := cliErr.Error(); msg != "" {
			fmt.Fprintf(w, "Error: %s\n", msg)
		}
		if cliErr.Hint != "" {
			fmt.Fprintln(w, cliErr.Hint)
		}
		return cliErr.Code
	}

	errStr := err.Error()
	fmt.Fprintf(w, "Error: %s\n", errStr)

	if strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "accepts ") ||
		strings.Contains(errStr, "requires at least") {
		fmt.Fprintln(w, "Run 'procwait --help' for usage")
		return ExitUsage
	}
	return ExitGeneral
}
