package procwait

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/encoding"
)

// ConfigSnapshot holds a copy of waiterConfig fields for test assertions.
// Exported only via export_test.go so the _test package can verify option
// closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	Pool           *Pool
	PoolSize       int
	Logger         *slog.Logger
	Encoding       encoding.Encoding
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// ApplyOptionsForTesting creates a default waiterConfig, applies opts, and
// returns a ConfigSnapshot of the result without building a Waiter.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultWaiterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		Pool:           cfg.Pool,
		PoolSize:       cfg.poolSize,
		Logger:         cfg.Logger,
		Encoding:       cfg.Encoding,
		TracerProvider: cfg.TracerProvider,
		MeterProvider:  cfg.MeterProvider,
	}
}
