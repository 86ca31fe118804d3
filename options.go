package procwait

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/encoding"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive(name string, v int) {
	if v <= 0 {
		panic(fmt.Sprintf("procwait: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonNil panics if isNil is true with a descriptive message.
func requireNonNil(name string, isNil bool) {
	if isNil {
		panic(fmt.Sprintf("procwait: %s must not be nil", name))
	}
}

// Option configures a Waiter during construction via NewWaiter.
//
// The With* functions panic on invalid input (nil values, non-positive
// sizes). Option values are typically constants or package-level
// variables, so an invalid value is a programmer error; the pattern mirrors
// [regexp.MustCompile].
type Option func(*waiterConfig)

// WithPool runs the Waiter's drain workers on p. The caller owns p and
// closes it once no wait is in flight.
//
// Default: DefaultPool().
//
// Panics if p is nil.
func WithPool(p *Pool) Option {
	requireNonNil("pool", p == nil)
	return func(c *waiterConfig) {
		c.Pool = p
		c.poolSize = 0
	}
}

// WithPoolSize gives the Waiter a new pool with size resident workers.
// The pool is reachable through Waiter.Pool and should be closed by the
// caller when the Waiter is no longer used.
//
// Panics if size <= 0.
func WithPoolSize(size int) Option {
	requirePositive("pool size", size)
	return func(c *waiterConfig) {
		c.Pool = nil
		c.poolSize = size
	}
}

// WithLogger sets the logger for this Waiter instead of the package-level
// logger.
//
// Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	requireNonNil("logger", l == nil)
	return func(c *waiterConfig) {
		c.Logger = l
	}
}

// WithEncoding decodes the child's output from enc to UTF-8 before it is
// split into lines, e.g. charmap.Windows1252 for legacy Windows tools.
//
// Default: bytes are kept as written.
//
// Panics if enc is nil.
func WithEncoding(enc encoding.Encoding) Option {
	requireNonNil("encoding", enc == nil)
	return func(c *waiterConfig) {
		c.Encoding = enc
	}
}

// WithTracerProvider sets the OpenTelemetry provider for WaitFor spans.
//
// Default: the global provider, a no-op unless the application installs one.
//
// Panics if tp is nil.
func WithTracerProvider(tp trace.TracerProvider) Option {
	requireNonNil("tracer provider", tp == nil)
	return func(c *waiterConfig) {
		c.TracerProvider = tp
	}
}

// WithMeterProvider sets the OpenTelemetry provider for the wait duration
// and call count instruments.
//
// Default: the global provider.
//
// Panics if mp is nil.
func WithMeterProvider(mp metric.MeterProvider) Option {
	requireNonNil("meter provider", mp == nil)
	return func(c *waiterConfig) {
		c.MeterProvider = mp
	}
}
