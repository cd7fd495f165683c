package consumer

import (
	"context"
	"fmt"
)

// SizeQuerier answers the maximum element size of a queue.
type SizeQuerier interface {
	MaxElementSize(ctx context.Context) (int, error)
}

// ProbeElementSize returns the queue's current maximum element size. Any
// error, including a negative size, is returned as *QueryError.
func ProbeElementSize(ctx context.Context, q SizeQuerier) (int, error) {
	size, err := q.MaxElementSize(ctx)
	if err != nil {
		return 0, &QueryError{Err: err}
	}
	if size < 0 {
		return 0, &QueryError{Err: fmt.Errorf("negative size %d", size)}
	}
	return size, nil
}
