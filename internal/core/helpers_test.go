package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

// fakeChild is a Child backed by in-memory pipes. io.Pipe has no buffer,
// so a writer blocks until a drain reads: stricter than an OS pipe and
// therefore a good deadlock detector.
type fakeChild struct {
	stdout io.Reader
	stderr io.Reader
	exited chan struct{}
	code   int
}

func (f *fakeChild) Stdout() io.Reader { return f.stdout }
func (f *fakeChild) Stderr() io.Reader { return f.stderr }

func (f *fakeChild) Wait(ctx context.Context) (int, error) {
	select {
	case <-f.exited:
		return f.code, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// scriptedChild returns a fakeChild that writes stdout and stderr
// concurrently, closes both pipes, and then exits with code.
func scriptedChild(t *testing.T, code int, stdout, stderr []string) *fakeChild {
	t.Helper()

	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	f := &fakeChild{stdout: outR, stderr: errR, exited: make(chan struct{}), code: code}

	writeAll := func(w *io.PipeWriter, lines []string, done chan<- struct{}) {
		defer close(done)
		for _, l := range lines {
			if _, err := io.WriteString(w, l+"\n"); err != nil {
				_ = w.CloseWithError(err)
				return
			}
		}
		_ = w.Close()
	}

	go func() {
		outDone := make(chan struct{})
		errDone := make(chan struct{})
		go writeAll(outW, stdout, outDone)
		go writeAll(errW, stderr, errDone)
		<-outDone
		<-errDone
		close(f.exited)
	}()
	return f
}

// numberedLines returns n lines of the form "<prefix>-<i>".
func numberedLines(prefix string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return lines
}

// newTestWaiter returns a Waiter on a pool of the given size that is
// closed when the test ends.
func newTestWaiter(t *testing.T, poolSize int) *Waiter {
	t.Helper()

	pool := NewPool(poolSize)
	t.Cleanup(pool.Close)
	return NewWaiter(WaiterConfig{Pool: pool})
}

// requirePanicContains runs fn and fails unless it panics with a message
// containing wantSubstr.
func requirePanicContains(t *testing.T, fn func(), wantSubstr string) {
	t.Helper()

	var recovered string
	func() {
		defer func() {
			if r := recover(); r != nil {
				recovered = fmt.Sprint(r)
			}
		}()
		fn()
	}()

	if recovered == "" {
		t.Fatal("expected panic, got none")
	}
	if !strings.Contains(recovered, wantSubstr) {
		t.Errorf("panic message %q does not contain %q", recovered, wantSubstr)
	}
}
