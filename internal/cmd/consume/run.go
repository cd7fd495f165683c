package consumerun

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfgpkg "github.com/rzbill/qconsumer/internal/config"
	"github.com/rzbill/qconsumer/internal/consumer"
	"github.com/rzbill/qconsumer/internal/device"
	"github.com/rzbill/qconsumer/internal/orchestrator"
	pebblestore "github.com/rzbill/qconsumer/internal/storage/pebble"
	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

// WorkerCommand is the subcommand worker processes are started with.
const WorkerCommand = "worker"

type Options struct {
	Config cfgpkg.Config
	// WorkerPath is the binary started for process isolation. Empty
	// re-executes the running binary.
	WorkerPath string
	// Out receives the user-facing lines. Defaults to os.Stdout.
	Out io.Writer
	// Logger overrides the logger built from Config.
	Logger logpkg.Logger
	// Registry receives the collectors. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// Run validates opts.Config and consumes from the configured device with
// Config.Concurrency workers. Invalid concurrency is reported as
// *orchestrator.ConfigurationError before anything is opened.
func Run(ctx context.Context, opts Options) (consumer.PoolResult, error) {
	cfg := opts.Config
	if err := orchestrator.Validate(cfg.Concurrency); err != nil {
		return consumer.PoolResult{}, err
	}
	if err := cfg.Validate(); err != nil {
		return consumer.PoolResult{}, &orchestrator.ConfigurationError{Concurrency: cfg.Concurrency, Reason: err.Error()}
	}
	fsync, err := pebblestore.ParseFsyncMode(cfg.Fsync)
	if err != nil {
		return consumer.PoolResult{}, &orchestrator.ConfigurationError{Concurrency: cfg.Concurrency, Reason: err.Error()}
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = logpkg.ApplyConfig(&logpkg.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if err != nil {
			return consumer.PoolResult{}, &orchestrator.ConfigurationError{Concurrency: cfg.Concurrency, Reason: err.Error()}
		}
		// Pebble reports through the standard library logger.
		logpkg.RedirectStdLog(logger)
	}

	sctx, stop := notifyOnce(ctx, logger, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := consumer.NewMetrics(reg)
	devOpts := device.Options{
		ProbeRequest:  cfg.ProbeRequest,
		Fsync:         fsync,
		FsyncInterval: time.Duration(cfg.FsyncIntervalMs) * time.Millisecond,
	}
	if cfg.UsesPebble() {
		devOpts.StoreMetrics = pebblestore.NewPrometheusMetrics(reg)
	}

	logger.Info("consume",
		logpkg.Str("device", cfg.Device),
		logpkg.Int("concurrency", cfg.Concurrency),
		logpkg.Str("isolation", cfg.Isolation),
	)

	orch, err := orchestrator.New(orchestrator.Options{
		Concurrency: cfg.Concurrency,
		Device:      cfg.Device,
		Isolation:   cfg.Isolation,
		WorkerPath:  opts.WorkerPath,
		WorkerArgs:  WorkerArgs(cfg),
		WorkerEnv:   WorkerEnv(cfg),
		Open: func(ctx context.Context, identifier string) (device.Device, error) {
			return device.Open(ctx, identifier, devOpts)
		},
		Out:     opts.Out,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return consumer.PoolResult{}, err
	}

	res, runErr := orch.Run(sctx)

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); err != nil {
			logger.Warn("metrics textfile write failed", logpkg.Str("path", cfg.MetricsTextfile), logpkg.Err(err))
		}
	}
	if runErr != nil {
		logger.Error("consume failed",
			logpkg.Int("spawned", res.Spawned()),
			logpkg.Int("failures", len(res.Failures())),
			logpkg.Err(runErr),
		)
		return res, runErr
	}
	logger.Info("consume done",
		logpkg.Int("spawned", res.Spawned()),
		logpkg.Int("messages", len(res.Successes())),
		logpkg.Dur("elapsed", res.Duration),
	)
	return res, nil
}

// notifyOnce returns a context cancelled by the first of signals. Only that
// first signal is trapped: a started worker cannot be interrupted inside a
// driver read, so a second signal gets the default disposition and ends the
// process.
func notifyOnce(parent context.Context, logger logpkg.Logger, signals ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			signal.Stop(ch)
			logger.Warn("interrupted; waiting for started workers, signal again to exit", logpkg.Str("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// WorkerArgs are the arguments a worker process is started with, ahead of
// the descriptor and index the spawner appends.
func WorkerArgs(cfg cfgpkg.Config) []string {
	args := []string{WorkerCommand}
	if cfg.ProbeRequest != 0 {
		args = append(args, "--probe-request", fmt.Sprintf("%#x", cfg.ProbeRequest))
	}
	return args
}

// WorkerEnv carries the log settings into worker processes.
func WorkerEnv(cfg cfgpkg.Config) []string {
	return []string{
		"QCON_LOG_LEVEL=" + cfg.LogLevel,
		"QCON_LOG_FORMAT=" + cfg.LogFormat,
	}
}
