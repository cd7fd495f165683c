package scullq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pebblestore "github.com/rzbill/qconsumer/internal/storage/pebble"
)

var (
	// ErrClosed is returned by operations on a closed queue.
	ErrClosed = errors.New("scullq: queue closed")
	// ErrTooLarge is returned when a payload exceeds the element size.
	ErrTooLarge = errors.New("scullq: element exceeds maximum size")
	// ErrCorrupt is returned when a stored element fails its checksum.
	ErrCorrupt = errors.New("scullq: corrupt element")
)

// Options configures a Queue.
type Options struct {
	// ElementSize is used when the queue is created. Existing queues keep
	// their recorded size.
	ElementSize int
	// NonBlocking makes Consume return 0 bytes on an empty queue instead of
	// waiting for a producer.
	NonBlocking bool
}

// Queue is a FIFO of bounded elements persisted in Pebble.
type Queue struct {
	db          *pebblestore.DB
	name        string
	nonBlocking bool

	mu       sync.Mutex
	head     uint64
	tail     uint64
	closed   bool
	notifyCh chan struct{}
}

// Open initializes queue name, creating its meta record if needed and
// restoring head/tail from the state record.
func Open(db *pebblestore.DB, name string, opts Options) (*Queue, error) {
	if name == "" {
		return nil, errors.New("scullq: queue name required")
	}
	if _, err := EnsureMeta(db, name, opts.ElementSize); err != nil {
		return nil, fmt.Errorf("ensure meta: %w", err)
	}
	q := &Queue{db: db, name: name, nonBlocking: opts.NonBlocking, head: 1, notifyCh: make(chan struct{})}
	if st, err := db.Get(StateKey(name)); err == nil {
		if head, tail, ok := decodeState(st); ok {
			q.head, q.tail = head, tail
		}
	} else if !errors.Is(err, pebblestore.ErrNotFound) {
		return nil, err
	}
	return q, nil
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// MaxElementSize reads the current element size from the meta record.
func (q *Queue) MaxElementSize() (int, error) {
	m, err := LoadMeta(q.db, q.name)
	if err != nil {
		return 0, err
	}
	return m.ElementSize, nil
}

// SetElementSize changes the maximum element size. Elements already queued
// are kept; consumers reading with a smaller buffer receive a truncated copy.
func (q *Queue) SetElementSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("scullq: invalid element size %d", n)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	m, err := LoadMeta(q.db, q.name)
	if err != nil {
		return err
	}
	m.ElementSize = n
	return storeMeta(q.db, m)
}

// Len returns the number of queued elements.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head > q.tail {
		return 0
	}
	return int(q.tail - q.head + 1)
}

// Enqueue appends payload and wakes blocked consumers.
func (q *Queue) Enqueue(ctx context.Context, payload []byte) (uint64, error) {
	size, err := q.MaxElementSize()
	if err != nil {
		return 0, err
	}
	if len(payload) > size {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(payload), size)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0, ErrClosed
	}

	seq := q.tail + 1
	b := q.db.NewBatch()
	defer b.Close()
	if err := b.Set(MsgKey(q.name, seq), EncodeRecord(payload), nil); err != nil {
		return 0, err
	}
	if err := b.Set(StateKey(q.name), encodeState(q.head, seq), nil); err != nil {
		return 0, err
	}
	if err := q.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	q.tail = seq

	close(q.notifyCh)
	q.notifyCh = make(chan struct{})
	return seq, nil
}

// Consume removes the oldest element and copies at most len(buf) bytes of
// it into buf, returning the number of bytes copied. It blocks while the
// queue is empty unless the queue is non-blocking, in which case it returns
// 0. A corrupt element is dropped and reported as ErrCorrupt.
func (q *Queue) Consume(ctx context.Context, buf []byte) (int, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return 0, ErrClosed
		}
		if q.head <= q.tail {
			n, err := q.popLocked(ctx, buf)
			q.mu.Unlock()
			return n, err
		}
		if q.nonBlocking {
			q.mu.Unlock()
			return 0, nil
		}
		ch := q.notifyCh
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ch:
		}
	}
}

func (q *Queue) popLocked(ctx context.Context, buf []byte) (int, error) {
	seq := q.head
	key := MsgKey(q.name, seq)
	val, err := q.db.Get(key)
	if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return 0, err
	}

	b := q.db.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return 0, err
	}
	if err := b.Set(StateKey(q.name), encodeState(seq+1, q.tail), nil); err != nil {
		return 0, err
	}
	if err := q.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	q.head = seq + 1

	if val == nil {
		return 0, fmt.Errorf("%w: seq %d missing", ErrCorrupt, seq)
	}
	payload, ok := DecodeRecord(val)
	if !ok {
		return 0, fmt.Errorf("%w: seq %d", ErrCorrupt, seq)
	}
	return copy(buf, payload), nil
}

// Close wakes all blocked consumers with ErrClosed. The underlying DB is
// owned by the caller.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.notifyCh)
	return nil
}
