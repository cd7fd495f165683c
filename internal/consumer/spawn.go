package consumer

import (
	"context"
	"fmt"
	"runtime/debug"

	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

// Handle is a started worker.
type Handle interface {
	// Wait blocks until the worker terminates and returns its outcome.
	Wait() Outcome
}

// Spawner starts one worker. A returned error means the worker never ran.
type Spawner interface {
	Spawn(ctx context.Context, worker int) (Handle, error)
}

// GoroutineSpawner runs each worker on its own goroutine. Workers share only
// the queue; each allocates its own buffer, and a panicking worker becomes a
// Failure instead of taking the process down.
type GoroutineSpawner struct {
	Queue  Queue
	Logger logpkg.Logger
}

type goroutineHandle struct {
	done chan Outcome
}

func (h *goroutineHandle) Wait() Outcome { return <-h.done }

// Spawn implements Spawner.
func (s *GoroutineSpawner) Spawn(ctx context.Context, worker int) (Handle, error) {
	if s.Queue == nil {
		return nil, fmt.Errorf("no queue configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = logpkg.NewNop()
	}
	h := &goroutineHandle{done: make(chan Outcome, 1)}
	go func() {
		var out Outcome
		defer func() {
			if r := recover(); r != nil {
				logger.Error("worker panicked", logpkg.Int("worker", worker), logpkg.Str("stack", string(debug.Stack())))
				out = Failure(fmt.Errorf("worker panic: %v", r))
			}
			out.Worker = worker
			h.done <- out
		}()
		out = Attempt(ctx, s.Queue)
	}()
	return h, nil
}
