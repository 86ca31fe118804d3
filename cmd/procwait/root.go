package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/giantswarm/procwait"
)

// telemetryFlushTimeout bounds the final span and metric export.
const telemetryFlushTimeout = 5 * time.Second

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	log       *slog.Logger
	waiter    procwait.Waiter
	shutdown  telemetryShutdown
	poolStats metric.Registration
	ownsPool  bool
}

// close releases what PersistentPreRunE created. Subcommands defer it
// from RunE, since cobra skips post-run hooks when RunE fails.
func (a *app) close() {
	if a.poolStats != nil {
		if err := a.poolStats.Unregister(); err != nil {
			a.log.Debug("unregister pool metrics", "error", err)
		}
	}
	if a.ownsPool {
		a.waiter.Pool().Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.log.Warn("telemetry shutdown failed", "error", err)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "procwait",
		Short: "Run child processes and wait for them without losing output",
		Long: `procwait starts a child process, drains its stdout and stderr while
waiting for it to exit, and prints everything it wrote.

Settings come from flags, then PROCWAIT_* environment variables
(PROCWAIT_LOG_LEVEL, PROCWAIT_LOG_FORMAT, PROCWAIT_POOL_SIZE, ...),
then the --config file, then defaults.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return &CLIError{
					Message: "invalid configuration",
					Hint:    "Use --log-level (error|warn|info|debug), --log-format (json|text) and a non-negative --pool-size",
					Cause:   err,
					Code:    ExitConfig,
				}
			}

			a.log = newLogger(cfg, cmd.ErrOrStderr())
			procwait.SetLogger(a.log)

			tel, err := setupTelemetry(cmd.Context(), cfg)
			if err != nil {
				a.log.Warn("telemetry initialization failed", "error", err)
			}
			a.shutdown = tel.shutdown

			opts := []procwait.Option{
				procwait.WithLogger(a.log),
				procwait.WithTracerProvider(tel.tracer),
				procwait.WithMeterProvider(tel.meter),
			}
			if cfg.PoolSize > 0 {
				opts = append(opts, procwait.WithPoolSize(cfg.PoolSize))
				a.ownsPool = true
			}
			a.waiter = procwait.NewWaiter(opts...)

			if cfg.Metrics {
				reg, err := procwait.RegisterPoolMetrics(tel.meter, a.waiter.Pool())
				if err != nil {
					a.log.Warn("pool metrics disabled", "error", err)
				}
				a.poolStats = reg
			}
			return nil
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	registerFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newPidCmd(a))

	return rootCmd
}
