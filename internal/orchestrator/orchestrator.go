package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rzbill/qconsumer/internal/config"
	"github.com/rzbill/qconsumer/internal/consumer"
	"github.com/rzbill/qconsumer/internal/device"
	"github.com/rzbill/qconsumer/pkg/id"
	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

// MaxConcurrency is the largest accepted worker count.
const MaxConcurrency = 20

// Opener opens the shared device.
type Opener func(ctx context.Context, identifier string) (device.Device, error)

// SpawnerFactory builds the spawner used for one run over dev.
type SpawnerFactory func(dev device.Device) (consumer.Spawner, error)

// Options configure an Orchestrator.
type Options struct {
	Concurrency int
	Device      string
	// Isolation selects config.IsolationProcess or config.IsolationGoroutine.
	// Ignored when NewSpawner is set.
	Isolation string
	// WorkerPath and WorkerArgs locate the worker entrypoint for process
	// isolation. An empty path re-executes the running binary.
	WorkerPath string
	WorkerArgs []string
	WorkerEnv  []string

	Open       Opener
	NewSpawner SpawnerFactory
	// Out receives user-facing lines. Defaults to os.Stdout.
	Out     io.Writer
	Logger  logpkg.Logger
	Metrics *consumer.Metrics
}

// Orchestrator runs one consume invocation.
type Orchestrator struct {
	opts   Options
	logger logpkg.Logger
	runs   *id.Generator
}

// Validate checks the requested concurrency.
func Validate(concurrency int) error {
	if concurrency < 1 || concurrency > MaxConcurrency {
		return &ConfigurationError{Concurrency: concurrency}
	}
	return nil
}

// New validates opts and returns an Orchestrator. Invalid concurrency is
// reported as *ConfigurationError.
func New(opts Options) (*Orchestrator, error) {
	if err := Validate(opts.Concurrency); err != nil {
		return nil, err
	}
	if opts.Device == "" {
		return nil, &ConfigurationError{Reason: "no device given"}
	}
	if opts.Open == nil {
		opts.Open = func(ctx context.Context, identifier string) (device.Device, error) {
			return device.Open(ctx, identifier, device.Options{})
		}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNop()
	}
	return &Orchestrator{opts: opts, logger: logger.WithComponent("orchestrator"), runs: id.NewGenerator()}, nil
}

// Run opens the device, runs the pool, prints each consumed message as its
// worker terminates and closes the device. The pool result is returned whenever the pool ran. The error
// wraps ErrPoolFailed, *ResourceOpenError or *ResourceCloseError.
func (o *Orchestrator) Run(ctx context.Context) (consumer.PoolResult, error) {
	run := o.runs.Next()
	logger := o.logger.With(logpkg.Str("run", run.String()), logpkg.Str("device", o.opts.Device))

	dev, err := o.opts.Open(ctx, o.opts.Device)
	if err != nil {
		logger.Error("device open failed", logpkg.Err(err))
		return consumer.PoolResult{}, &ResourceOpenError{Device: o.opts.Device, Err: err}
	}
	fmt.Fprintf(o.opts.Out, "Device (%s) opened\n", o.opts.Device)

	res, runErr := o.runPool(ctx, dev, logger)

	if err := dev.Close(); err != nil {
		logger.Error("device close failed", logpkg.Err(err))
		return res, errors.Join(runErr, &ResourceCloseError{Device: o.opts.Device, Err: err})
	}
	fmt.Fprintf(o.opts.Out, "Device (%s) closed\n", o.opts.Device)
	return res, runErr
}

func (o *Orchestrator) runPool(ctx context.Context, dev device.Device, logger logpkg.Logger) (consumer.PoolResult, error) {
	spawner, err := o.spawner(dev, logger)
	if err != nil {
		return consumer.PoolResult{}, err
	}
	pool, err := consumer.NewPool(spawner, o.opts.Concurrency,
		consumer.WithLogger(logger.WithComponent("pool")),
		consumer.WithMetrics(o.opts.Metrics),
		consumer.WithOnOutcome(o.display),
	)
	if err != nil {
		return consumer.PoolResult{}, err
	}

	logger.Info("starting workers", logpkg.Int("concurrency", o.opts.Concurrency))
	res := pool.Run(ctx)
	if !res.OK() {
		return res, errors.Join(ErrPoolFailed, res.Err())
	}
	return res, nil
}

// display prints a consumed message as soon as its worker is joined.
// Message is exactly Length bytes; nothing past it is read.
func (o *Orchestrator) display(out consumer.Outcome) {
	if out.Kind == consumer.KindSuccess {
		fmt.Fprintf(o.opts.Out, "read: %s\n", out.Message)
	}
}

func (o *Orchestrator) spawner(dev device.Device, logger logpkg.Logger) (consumer.Spawner, error) {
	if o.opts.NewSpawner != nil {
		return o.opts.NewSpawner(dev)
	}
	switch o.opts.Isolation {
	case config.IsolationGoroutine:
		return &consumer.GoroutineSpawner{Queue: dev, Logger: logger.WithComponent("worker")}, nil
	case config.IsolationProcess, "":
		fb, ok := dev.(device.FileBacked)
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("device %s cannot be shared with worker processes; use goroutine isolation", o.opts.Device)}
		}
		return &consumer.ProcessSpawner{
			Path: o.opts.WorkerPath,
			Args: o.opts.WorkerArgs,
			File: fb.File(),
			Env:  o.opts.WorkerEnv,
		}, nil
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown isolation %q", o.opts.Isolation)}
	}
}
