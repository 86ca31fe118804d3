package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// tracerName identifies spans emitted by the Waiter.
const tracerName = "github.com/giantswarm/procwait"

// Child is a running child process as seen by the Waiter. The caller owns
// it; the Waiter only borrows it for the duration of one WaitFor call.
//
// Stdout and Stderr must return the parent's read ends of the child's
// output pipes. They are read until end-of-stream and closed by the Waiter
// when they implement io.Closer. Wait blocks until the child exits and
// returns its exit code, or returns early with ctx's error.
type Child interface {
	Stdout() io.Reader
	Stderr() io.Reader
	Wait(ctx context.Context) (int, error)
}

// Waiter waits for child processes while draining their output. It is safe
// for concurrent use; independent WaitFor calls share the pool but no other
// state.
type Waiter struct {
	cfg     WaiterConfig
	tracer  trace.Tracer
	metrics waitMetrics
}

// NewWaiter creates a Waiter from cfg.
// Panics if cfg.Validate() reports errors, since an invalid config is a
// programmer error.
func NewWaiter(cfg WaiterConfig) *Waiter {
	if err := cfg.Validate(); err != nil {
		panic("procwait: invalid waiter config: " + err.Error())
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	metrics, err := newWaitMetrics(mp)
	if err != nil {
		Logger().Warn("wait metrics disabled", "error", err)
		metrics, _ = newWaitMetrics(noop.NewMeterProvider())
	}

	return &Waiter{
		cfg:     cfg,
		tracer:  tp.Tracer(tracerName),
		metrics: metrics,
	}
}

// Pool returns the execution pool this Waiter submits drains to.
func (w *Waiter) Pool() *Pool {
	return w.cfg.Pool
}

func (w *Waiter) logger() *slog.Logger {
	if w.cfg.Logger != nil {
		return w.cfg.Logger
	}
	return Logger()
}

// WaitFor drains child's stdout and stderr on the pool while blocking until
// the child exits, then blocks until both streams have reached end-of-stream
// and returns the exit code with the captured lines.
//
// A non-zero exit code is not an error. Cancellation of ctx during either
// wait returns an error wrapping ErrInterrupted; a read failure on either
// stream returns an error wrapping ErrDrain. In both cases no partial Result
// is returned.
func (w *Waiter) WaitFor(ctx context.Context, child Child) (Result, error) {
	if child == nil {
		return Result{}, ErrNilChild
	}

	start := time.Now()
	callID := uuid.NewString()
	log := w.logger().With("call", callID)
	ctx, span := w.tracer.Start(ctx, "procwait.WaitFor",
		trace.WithAttributes(attribute.String("procwait.call_id", callID)))
	defer span.End()

	res, err := w.waitFor(ctx, child, log)
	w.metrics.record(ctx, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("wait failed", "error", err)
		return Result{}, err
	}

	span.SetAttributes(
		attribute.Int("procwait.exit_code", res.exitCode),
		attribute.Int("procwait.stdout_lines", len(res.stdout)),
		attribute.Int("procwait.stderr_lines", len(res.stderr)),
	)
	log.Debug("wait completed",
		"exit_code", res.exitCode,
		"stdout_lines", len(res.stdout),
		"stderr_lines", len(res.stderr))
	return res, nil
}

func (w *Waiter) waitFor(ctx context.Context, child Child, log *slog.Logger) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: before waiting: %w", ErrInterrupted, err)
	}

	// Buffered for both workers so a worker finishing after an interrupted
	// call never blocks its pool goroutine.
	done := make(chan drainResult, 2)

	if err := w.cfg.Pool.Submit(drainTask(streamStdout, child.Stdout(), w.cfg.Encoding, done)); err != nil {
		return Result{}, fmt.Errorf("submit %s drain: %w", streamStdout, err)
	}
	if err := w.cfg.Pool.Submit(drainTask(streamStderr, child.Stderr(), w.cfg.Encoding, done)); err != nil {
		return Result{}, fmt.Errorf("submit %s drain: %w", streamStderr, err)
	}

	code, err := child.Wait(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("%w: waiting for process exit: %w", ErrInterrupted, ctxErr)
		}
		return Result{}, fmt.Errorf("waiting for process exit: %w", err)
	}
	log.Debug("process exited; waiting for output drains", "exit_code", code)

	// The child may close its pipes before or after it is reaped, so both
	// drains are awaited here regardless of which finished first.
	var stdout, stderr []string
	var drainErrs []error
	for range 2 {
		select {
		case r := <-done:
			if r.err != nil {
				drainErrs = append(drainErrs, fmt.Errorf("%w: %s: %w", ErrDrain, r.stream, r.err))
				continue
			}
			if r.stream == streamStdout {
				stdout = r.lines
			} else {
				stderr = r.lines
			}
		case <-ctx.Done():
			return Result{}, fmt.Errorf("%w: waiting for output drain: %w", ErrInterrupted, ctx.Err())
		}
	}
	if len(drainErrs) > 0 {
		return Result{}, errors.Join(drainErrs...)
	}

	// The drained slices are owned by this call alone, so they are frozen
	// into the Result without another copy.
	return Result{exitCode: code, stdout: stdout, stderr: stderr}, nil
}

// WaitForSuccessfulCompletion is WaitFor, except that a non-zero exit code
// is reported as an *ExitError (matching ErrNonZeroExit) carrying the
// captured stdout, or stderr when stdout is empty. The Result is returned
// alongside the ExitError. On exit code 0 the Result is returned unchanged.
func (w *Waiter) WaitForSuccessfulCompletion(ctx context.Context, child Child) (Result, error) {
	res, err := w.WaitFor(ctx, child)
	if err != nil {
		return Result{}, err
	}
	if res.exitCode != 0 {
		return res, &ExitError{Code: res.exitCode, Output: res.diagnostic()}
	}
	return res, nil
}

// WaitForAll waits for every child concurrently and returns their Results
// in argument order. The first failure cancels the remaining waits, which
// then fail with ErrInterrupted; the first error is returned.
func (w *Waiter) WaitForAll(ctx context.Context, children ...Child) ([]Result, error) {
	results := make([]Result, len(children))

	g, gctx := errgroup.WithContext(ctx)
	for i, child := range children {
		g.Go(func() error {
			res, err := w.WaitFor(gctx, child)
			if err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
