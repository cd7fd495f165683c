package consumer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// scriptedQueue answers probes and consumes from per-call scripts. Calls past
// the end of a script repeat its last entry.
type scriptedQueue struct {
	mu       sync.Mutex
	sizes    []sizeReply
	reads    []readReply
	probes   int
	consumes int
}

type sizeReply struct {
	size int
	err  error
}

type readReply struct {
	data []byte
	n    int // overrides len(data) when non-zero
	err  error
}

func (q *scriptedQueue) MaxElementSize(context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r := q.sizes[min(q.probes, len(q.sizes)-1)]
	q.probes++
	return r.size, r.err
}

func (q *scriptedQueue) Consume(_ context.Context, buf []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r := q.reads[min(q.consumes, len(q.reads)-1)]
	q.consumes++
	if r.err != nil {
		return 0, r.err
	}
	n := copy(buf, r.data)
	if r.n != 0 {
		n = r.n
	}
	return n, nil
}

func (q *scriptedQueue) counts() (probes, consumes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.probes, q.consumes
}

// outcomeHandle is a pre-resolved worker.
type outcomeHandle struct {
	out     Outcome
	release chan struct{}
	waited  *atomic.Int32
}

func (h *outcomeHandle) Wait() Outcome {
	if h.release != nil {
		<-h.release
	}
	if h.waited != nil {
		h.waited.Add(1)
	}
	return h.out
}

// recordingSpawner hands out outcomes by worker number and fails the spawn
// of failAt (1-based, 0 disables).
type recordingSpawner struct {
	mu       sync.Mutex
	outcomes map[int]Outcome
	failAt   int
	attempts []int
	waited   atomic.Int32
	release  chan struct{}
}

var errNoResources = errors.New("resource temporarily unavailable")

func (s *recordingSpawner) Spawn(_ context.Context, worker int) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, worker)
	if worker == s.failAt {
		return nil, errNoResources
	}
	out, ok := s.outcomes[worker]
	if !ok {
		out = Empty()
	}
	return &outcomeHandle{out: out, release: s.release, waited: &s.waited}, nil
}

func (s *recordingSpawner) spawnAttempts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.attempts...)
}
