package core

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/encoding"
)

// WaiterConfig holds configuration for a Waiter. All fields are immutable
// after NewWaiter.
type WaiterConfig struct {
	// Pool runs the drain workers. Required.
	Pool *Pool

	// Encoding decodes the child's output to UTF-8. Nil leaves bytes as-is.
	Encoding encoding.Encoding

	// TracerProvider supplies the tracer for WaitFor spans. Nil uses the
	// global OpenTelemetry provider.
	TracerProvider trace.TracerProvider

	// MeterProvider supplies the wait duration and call instruments. Nil
	// uses the global OpenTelemetry provider.
	MeterProvider metric.MeterProvider

	// Logger overrides the package-level logger for this Waiter.
	Logger *slog.Logger
}

// Validate checks every WaiterConfig invariant and reports all violations
// at once via errors.Join.
func (c WaiterConfig) Validate() error {
	var errs []error

	if c.Pool == nil {
		errs = append(errs, errors.New("pool must not be nil"))
	}

	return errors.Join(errs...)
}
