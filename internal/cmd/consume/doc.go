// Package consumerun exposes the Run entrypoint behind `qconsumer consume`.
// It resolves configuration, builds the process logger and metrics registry,
// runs the orchestrator and exports metrics once the run is over.
//
// Example:
//
//	cfg := config.Default()
//	cfg.Concurrency = 4
//	res, err := consumerun.Run(ctx, consumerun.Options{Config: cfg})
package consumerun
