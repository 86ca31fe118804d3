package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Each is also a persistent flag and a PROCWAIT_*
// environment variable (dashes become underscores).
const (
	keyConfig          = "config"
	keyLogLevel        = "log-level"
	keyLogFormat       = "log-format"
	keyPoolSize        = "pool-size"
	keyTrace           = "trace"
	keyEndpoint        = "trace-endpoint"
	keyMetrics         = "metrics"
	keyMetricsEndpoint = "metrics-endpoint"
	keyMetricsInsecure = "metrics-insecure"
)

const envPrefix = "PROCWAIT"

// cliConfig is the resolved configuration for one invocation.
type cliConfig struct {
	LogLevel        string
	LogFormat       string
	PoolSize        int
	Trace           bool
	TraceEndpoint   string
	Metrics         bool
	MetricsEndpoint string
	MetricsInsecure bool
}

// registerFlags adds the persistent configuration flags to fs.
func registerFlags(fs *pflag.FlagSet) {
	fs.String(keyConfig, "", "config file (yaml, json or toml)")
	fs.String(keyLogLevel, "info", "log level: error, warn, info, debug")
	fs.String(keyLogFormat, "text", "log format: json, text")
	fs.Int(keyPoolSize, 0, "drain pool size (0 uses 2x CPUs)")
	fs.Bool(keyTrace, false, "export OpenTelemetry traces over OTLP/HTTP")
	fs.String(keyEndpoint, "", "OTLP/HTTP endpoint (host:port)")
	fs.Bool(keyMetrics, false, "export OpenTelemetry metrics over OTLP/gRPC")
	fs.String(keyMetricsEndpoint, "", "OTLP/gRPC metrics endpoint (host:port)")
	fs.Bool(keyMetricsInsecure, false, "disable TLS for the metrics exporter")
}

// loadConfig resolves configuration from flags, then PROCWAIT_*
// environment variables, then the optional config file, then defaults.
func loadConfig(fs *pflag.FlagSet) (cliConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return cliConfig{}, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cliConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := cliConfig{
		LogLevel:        v.GetString(keyLogLevel),
		LogFormat:       v.GetString(keyLogFormat),
		PoolSize:        v.GetInt(keyPoolSize),
		Trace:           v.GetBool(keyTrace),
		TraceEndpoint:   v.GetString(keyEndpoint),
		Metrics:         v.GetBool(keyMetrics),
		MetricsEndpoint: v.GetString(keyMetricsEndpoint),
		MetricsInsecure: v.GetBool(keyMetricsInsecure),
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c cliConfig) Validate() error {
	var errs []error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %q (allowed: json, text)", c.LogFormat))
	}
	if c.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("pool size must not be negative, got %d", c.PoolSize))
	}
	return errors.Join(errs...)
}

// newLogger builds the CLI's structured logger writing to w.
func newLogger(c cliConfig, w io.Writer) *slog.Logger {
	// Validate has already accepted the level.
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(c.LogFormat), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(
		slog.String("component", "procwait"),
		slog.String("cli.version", version),
	)
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", level)
	}
}
