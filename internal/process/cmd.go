package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/giantswarm/procwait/internal/core"
)

// ErrAlreadyStarted is returned by Start when cmd.Process is already set.
const ErrAlreadyStarted = core.Error("process already started")

// ErrNilCmd is returned by Start when called with a nil *exec.Cmd.
const ErrNilCmd = core.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned by Start when cmd.Path is empty.
const ErrEmptyCmdPath = core.Error("cmd.Path must not be empty")

// ErrOutputAssigned is returned by Start when cmd.Stdout or cmd.Stderr is
// already set; Start owns both streams.
const ErrOutputAssigned = core.Error("cmd.Stdout and cmd.Stderr must be unset")

// Cmd is a started child process whose standard output and standard error
// are connected to pipes owned by the caller rather than by exec.Cmd.
//
// exec.Cmd.Wait closes the pipes returned by StdoutPipe, so waiting for exit
// and reading the output could not proceed independently. Here both
// streams are plain *os.File pipes: Wait never touches them, and a reader
// sees EOF only after every writer (the child and anything it spawned) has
// closed its end.
//
// Stdout, Stderr, Wait, Exited and Pid are safe for concurrent use. Stop
// and Close must not be called concurrently with each other.
type Cmd struct {
	cmd    *exec.Cmd
	name   string
	log    *slog.Logger
	stdout *os.File
	stderr *os.File

	// exited is closed after the single cmd.Wait call returns; waitErr is
	// written before the close and read only after it.
	exited  chan struct{}
	waitErr error

	closeOnce sync.Once
}

// Start connects cmd's stdout and stderr to new pipes and starts it.
// Exactly one goroutine calling cmd.Wait is started.
//
// The caller must read both streams to EOF (or Close the Cmd) and should
// call Wait to observe the exit code.
func Start(cmd *exec.Cmd, logger *slog.Logger) (*Cmd, error) {
	if cmd == nil {
		return nil, ErrNilCmd
	}
	if cmd.Path == "" {
		return nil, ErrEmptyCmdPath
	}
	if cmd.Process != nil {
		return nil, ErrAlreadyStarted
	}
	if cmd.Stdout != nil || cmd.Stderr != nil {
		return nil, ErrOutputAssigned
	}
	if logger == nil {
		logger = slog.Default()
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeAll(outR, outW)
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	cmd.Stdout = outW
	cmd.Stderr = errW
	if cmd.SysProcAttr == nil {
		configureSysProcAttr(cmd)
	}

	name := filepath.Base(cmd.Path)
	if err := cmd.Start(); err != nil {
		closeAll(outR, outW, errR, errW)
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	// The child holds its own copies of the write ends. Closing ours is what
	// lets the readers observe EOF once the child is gone.
	closeAll(outW, errW)

	c := &Cmd{
		cmd:    cmd,
		name:   name,
		log:    logger,
		stdout: outR,
		stderr: errR,
		exited: make(chan struct{}),
	}
	go func() {
		c.waitErr = cmd.Wait()
		close(c.exited)
	}()

	logger.Debug("process started", "process", name, "pid", cmd.Process.Pid)
	return c, nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// Stdout returns the read end of the child's standard output.
func (c *Cmd) Stdout() io.Reader {
	return c.stdout
}

// Stderr returns the read end of the child's standard error.
func (c *Cmd) Stderr() io.Reader {
	return c.stderr
}

// Pid returns the child's process ID.
func (c *Cmd) Pid() int {
	return c.cmd.Process.Pid
}

// Name returns the base name of the executable, used in logs and errors.
func (c *Cmd) Name() string {
	return c.name
}

// Exited returns a channel that is closed when the child has been reaped.
func (c *Cmd) Exited() <-chan struct{} {
	return c.exited
}

// Wait blocks until the child exits and returns its exit code, which is -1
// if the child was terminated by a signal. A non-zero exit is not an error.
// If ctx is done first, Wait returns ctx.Err() and the child keeps running.
// Wait may be called any number of times.
func (c *Cmd) Wait(ctx context.Context) (int, error) {
	select {
	case <-c.exited:
		return c.exitCode()
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c *Cmd) exitCode() (int, error) {
	var exitErr *exec.ExitError
	if c.waitErr != nil && !errors.As(c.waitErr, &exitErr) {
		return 0, fmt.Errorf("%s: %w", c.name, c.waitErr)
	}
	return c.cmd.ProcessState.ExitCode(), nil
}

// Close closes the parent's read ends of both pipes. Readers blocked on
// them return with an error. Use it after Stop to release drains of a
// child whose wait was abandoned; after a completed wait the drains have
// already closed the pipes and Close is a no-op. Safe to call repeatedly.
func (c *Cmd) Close() {
	c.closeOnce.Do(func() {
		// os.ErrClosed is expected when the drains got there first.
		for _, f := range []*os.File{c.stdout, c.stderr} {
			if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				c.log.Debug("close output pipe", "process", c.name, "error", err)
			}
		}
	})
}
