// Package workerrun is the entrypoint of a worker process: it performs one
// probe and consume against the inherited device handle and reports the
// outcome on stdout.
package workerrun

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rzbill/qconsumer/internal/config"
	"github.com/rzbill/qconsumer/internal/consumer"
	"github.com/rzbill/qconsumer/internal/device"
	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

type Options struct {
	// FD is the inherited descriptor of the shared device.
	FD int
	// Worker is the 1-based index assigned by the parent.
	Worker       int
	ProbeRequest uint
	// Out receives the report. Defaults to os.Stdout.
	Out    io.Writer
	Logger logpkg.Logger
}

// Run performs the worker's single attempt and writes its report. The
// returned outcome is the one reported; the error is non-nil only when the
// report itself could not be produced.
func Run(ctx context.Context, opts Options) (consumer.Outcome, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNop()
	}
	logger = logger.With(logpkg.Int("worker", opts.Worker), logpkg.Component("worker"))

	f := os.NewFile(uintptr(opts.FD), "device")
	if f == nil {
		out := consumer.Failure(fmt.Errorf("invalid device descriptor %d", opts.FD))
		out.Worker = opts.Worker
		return out, consumer.WriteReport(opts.Out, out)
	}
	// Closing drops only this process's reference to the shared handle.
	defer f.Close()

	return Report(ctx, device.NewFileDevice(f, opts.ProbeRequest), opts.Worker, opts.Out, logger)
}

// Report runs one attempt against q and writes the outcome to w.
func Report(ctx context.Context, q consumer.Queue, worker int, w io.Writer, logger logpkg.Logger) (consumer.Outcome, error) {
	out := consumer.Attempt(ctx, q)
	out.Worker = worker
	if out.Kind == consumer.KindFailure {
		logger.Warn("attempt failed", logpkg.Err(out.Err))
	} else {
		logger.Debug("attempt done", logpkg.Str("outcome", out.Kind.String()), logpkg.Int("bytes", out.Length))
	}
	if err := consumer.WriteReport(w, out); err != nil {
		return out, fmt.Errorf("write report: %w", err)
	}
	return out, nil
}

// LoggerFromEnv builds the worker logger from the QCON_LOG_* settings the
// parent passes down.
func LoggerFromEnv() (logpkg.Logger, error) {
	cfg := config.Default()
	config.FromEnv(&cfg)
	return logpkg.ApplyConfig(&logpkg.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// ExitCode maps an outcome to the worker's exit status.
func ExitCode(o consumer.Outcome) int {
	if o.OK() {
		return 0
	}
	return 1
}
