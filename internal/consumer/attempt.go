package consumer

import (
	"context"
	"fmt"
)

// Reader performs one blocking consume into buf.
type Reader interface {
	Consume(ctx context.Context, buf []byte) (int, error)
}

// Queue is the shared resource a worker probes and consumes from.
type Queue interface {
	SizeQuerier
	Reader
}

// ConsumeOnce performs a single consume of at most size bytes. The returned
// Success message is the first n bytes of a buffer allocated here; its
// capacity is clipped to n so no caller can read or write past what was
// consumed. Errors are terminal and never retried.
func ConsumeOnce(ctx context.Context, r Reader, size int) Outcome {
	buf := make([]byte, size)
	n, err := r.Consume(ctx, buf)
	if err != nil {
		return Failure(&ConsumeError{Err: err})
	}
	if n < 0 || n > size {
		return Failure(&ConsumeError{Err: fmt.Errorf("read returned %d bytes for a %d byte bound", n, size)})
	}
	if n == 0 {
		return Empty()
	}
	return Success(buf[:n:n])
}

// Attempt runs the full worker protocol: probe, then consume once. A probe
// failure ends the attempt without consuming.
func Attempt(ctx context.Context, q Queue) Outcome {
	size, err := ProbeElementSize(ctx, q)
	if err != nil {
		return Failure(err)
	}
	return ConsumeOnce(ctx, q, size)
}
