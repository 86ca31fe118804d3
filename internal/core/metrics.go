package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName identifies instruments created by procwait.
const meterName = "github.com/giantswarm/procwait"

// Outcome values recorded on wait instruments.
const (
	outcomeOK          = "ok"
	outcomeInterrupted = "interrupted"
	outcomeError       = "error"
)

// waitMetrics are the per-Waiter instruments.
type waitMetrics struct {
	duration metric.Float64Histogram
	calls    metric.Int64Counter
}

func newWaitMetrics(mp metric.MeterProvider) (waitMetrics, error) {
	meter := mp.Meter(meterName)

	duration, err := meter.Float64Histogram("procwait.wait.duration",
		metric.WithDescription("Time from WaitFor entry until exit code and both streams are complete."),
		metric.WithUnit("s"))
	if err != nil {
		return waitMetrics{}, fmt.Errorf("create wait duration histogram: %w", err)
	}
	calls, err := meter.Int64Counter("procwait.wait.calls",
		metric.WithDescription("WaitFor calls by outcome."),
		metric.WithUnit("{call}"))
	if err != nil {
		return waitMetrics{}, fmt.Errorf("create wait calls counter: %w", err)
	}
	return waitMetrics{duration: duration, calls: calls}, nil
}

// record adds one finished WaitFor call.
func (m waitMetrics) record(ctx context.Context, start time.Time, err error) {
	outcome := outcomeOK
	switch {
	case errors.Is(err, ErrInterrupted):
		outcome = outcomeInterrupted
	case err != nil:
		outcome = outcomeError
	}
	// The wait's ctx may already be canceled; recording must not depend on it.
	ctx = context.WithoutCancel(ctx)
	attrs := metric.WithAttributes(attribute.String("procwait.outcome", outcome))
	m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	m.calls.Add(ctx, 1, attrs)
}

// RegisterPoolMetrics exposes p's size and task counts as observable
// instruments on mp. Unregister the returned Registration when p is closed.
func RegisterPoolMetrics(mp metric.MeterProvider, p *Pool) (metric.Registration, error) {
	meter := mp.Meter(meterName)

	size, err := meter.Int64ObservableGauge("procwait.pool.size",
		metric.WithDescription("Resident workers in the execution pool."),
		metric.WithUnit("{worker}"))
	if err != nil {
		return nil, fmt.Errorf("create pool size gauge: %w", err)
	}
	tasks, err := meter.Int64ObservableCounter("procwait.pool.tasks",
		metric.WithDescription("Tasks run by the execution pool, by worker kind."),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, fmt.Errorf("create pool tasks counter: %w", err)
	}

	resident := metric.WithAttributes(attribute.String("procwait.worker", "resident"))
	overflow := metric.WithAttributes(attribute.String("procwait.worker", "overflow"))

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := p.Stats()
		o.ObserveInt64(size, int64(stats.Size))
		o.ObserveInt64(tasks, int64(stats.Resident), resident)
		o.ObserveInt64(tasks, int64(stats.Overflow), overflow)
		return nil
	}, size, tasks)
	if err != nil {
		return nil, fmt.Errorf("register pool metrics callback: %w", err)
	}
	return reg, nil
}
