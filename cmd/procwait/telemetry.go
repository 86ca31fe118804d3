package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials"
)

// metricsExportInterval is how often the periodic reader pushes metrics.
const metricsExportInterval = 5 * time.Second

// telemetryShutdown flushes and shuts down the telemetry pipelines.
type telemetryShutdown func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// telemetry holds the providers the waiter records on. The global
// providers are left untouched.
type telemetry struct {
	tracer   trace.TracerProvider
	meter    metric.MeterProvider
	shutdown telemetryShutdown
}

// disabledTelemetry records nothing and exports nothing.
func disabledTelemetry() telemetry {
	return telemetry{
		tracer:   tracenoop.NewTracerProvider(),
		meter:    metricnoop.NewMeterProvider(),
		shutdown: noopShutdown,
	}
}

// setupTelemetry builds the trace and metric pipelines enabled in c. A
// pipeline that is disabled gets a no-op provider.
func setupTelemetry(ctx context.Context, c cliConfig) (telemetry, error) {
	t := disabledTelemetry()
	if !c.Trace && !c.Metrics {
		return t, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", "procwait"),
			attribute.String("service.version", version),
			attribute.String("service.commit", commit),
		),
	)
	if err != nil {
		return disabledTelemetry(), fmt.Errorf("merge otel resource: %w", err)
	}

	var shutdowns []telemetryShutdown
	if c.Trace {
		tp, err := newTracerProvider(ctx, c, res)
		if err != nil {
			return disabledTelemetry(), err
		}
		t.tracer = tp
		shutdowns = append(shutdowns, func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown otel tracer provider: %w", err)
			}
			return nil
		})
	}
	if c.Metrics {
		mp, err := newMeterProvider(ctx, c, res)
		if err != nil {
			for _, s := range shutdowns {
				_ = s(ctx)
			}
			return disabledTelemetry(), err
		}
		t.meter = mp
		shutdowns = append(shutdowns, func(ctx context.Context) error {
			if err := mp.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown otel meter provider: %w", err)
			}
			return nil
		})
	}

	t.shutdown = func(ctx context.Context) error {
		var errs []error
		for _, s := range shutdowns {
			errs = append(errs, s(ctx))
		}
		return errors.Join(errs...)
	}
	return t, nil
}

func newTracerProvider(ctx context.Context, c cliConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	if c.TraceEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(c.TraceEndpoint))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otel trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, c cliConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var opts []otlpmetricgrpc.Option
	if c.MetricsEndpoint != "" {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(c.MetricsEndpoint))
	}
	if c.MetricsInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	} else {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(creds))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otel metric exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricsExportInterval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}
