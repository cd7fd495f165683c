package consumer

import "fmt"

// QueryError wraps a failed maximum element size query.
type QueryError struct{ Err error }

func (e *QueryError) Error() string { return "query max element size: " + e.Err.Error() }
func (e *QueryError) Unwrap() error { return e.Err }

// ConsumeError wraps a failed consume call.
type ConsumeError struct{ Err error }

func (e *ConsumeError) Error() string { return "consume: " + e.Err.Error() }
func (e *ConsumeError) Unwrap() error { return e.Err }

// SpawnError reports the worker whose start failed. Workers after it were
// never started.
type SpawnError struct {
	Worker int
	Err    error
}

func (e *SpawnError) Error() string { return fmt.Sprintf("spawn worker %d: %v", e.Worker, e.Err) }
func (e *SpawnError) Unwrap() error { return e.Err }

// WorkerError carries a failure reported by a worker process, whose
// original error value cannot cross the process boundary.
type WorkerError struct {
	Worker  int
	Message string
}

func (e *WorkerError) Error() string { return fmt.Sprintf("worker %d: %s", e.Worker, e.Message) }
