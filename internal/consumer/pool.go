package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

// PoolResult aggregates one pool run.
type PoolResult struct {
	Requested int
	// Outcomes holds one entry per spawned worker, ordered by worker number.
	// Message bodies are released once reported; Length is kept.
	Outcomes []Outcome
	// SpawnErr is set when spawning stopped early.
	SpawnErr error
	Duration time.Duration
}

// Spawned returns how many workers were started and joined.
func (r PoolResult) Spawned() int { return len(r.Outcomes) }

// Failures returns the outcomes of kind Failure.
func (r PoolResult) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Kind == KindFailure {
			out = append(out, o)
		}
	}
	return out
}

// Successes returns the Success outcomes in worker order.
func (r PoolResult) Successes() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Kind == KindSuccess {
			out = append(out, o)
		}
	}
	return out
}

// OK reports overall success: every requested worker was spawned and none
// failed.
func (r PoolResult) OK() bool {
	return r.SpawnErr == nil && len(r.Failures()) == 0
}

// Err joins the spawn error and worker failures, or returns nil when OK.
func (r PoolResult) Err() error {
	var errs []error
	if r.SpawnErr != nil {
		errs = append(errs, r.SpawnErr)
	}
	for _, o := range r.Failures() {
		errs = append(errs, fmt.Errorf("worker %d: %w", o.Worker, o.Err))
	}
	return errors.Join(errs...)
}

// Pool starts a fixed number of workers and joins all of them.
type Pool struct {
	spawner     Spawner
	concurrency int
	logger      logpkg.Logger
	metrics     *Metrics

	reportMu  sync.Mutex
	onOutcome func(Outcome)
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(l logpkg.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the pool collectors.
func WithMetrics(m *Metrics) PoolOption {
	return func(p *Pool) { p.metrics = m }
}

// WithOnOutcome sets a callback invoked once per worker as soon as that
// worker is joined, while its message is still held. Calls are serialized.
func WithOnOutcome(fn func(Outcome)) PoolOption {
	return func(p *Pool) { p.onOutcome = fn }
}

// NewPool returns a pool that will start concurrency workers through spawner.
func NewPool(spawner Spawner, concurrency int, opts ...PoolOption) (*Pool, error) {
	if spawner == nil {
		return nil, errors.New("consumer: nil spawner")
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("consumer: concurrency must be positive, got %d", concurrency)
	}
	p := &Pool{spawner: spawner, concurrency: concurrency, logger: logpkg.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run spawns workers 1..N in order. The first spawn error stops spawning;
// workers started before it are still joined. Run returns only after every
// started worker has terminated.
func (p *Pool) Run(ctx context.Context) PoolResult {
	start := time.Now()
	res := PoolResult{Requested: p.concurrency}

	handles := make([]Handle, 0, p.concurrency)
	for w := 1; w <= p.concurrency; w++ {
		h, err := p.spawner.Spawn(ctx, w)
		if err != nil {
			res.SpawnErr = &SpawnError{Worker: w, Err: err}
			p.metrics.spawnFailed()
			p.logger.Error("spawn failed; joining started workers",
				logpkg.Int("worker", w), logpkg.Int("started", len(handles)), logpkg.Err(err))
			break
		}
		p.metrics.spawned()
		p.logger.Debug("worker started", logpkg.Int("worker", w))
		handles = append(handles, h)
	}

	res.Outcomes = make([]Outcome, len(handles))
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h Handle) {
			defer wg.Done()
			out := h.Wait()
			out.Worker = i + 1
			p.metrics.outcome(out)
			p.logOutcome(out)
			p.report(out)
			out.Message = nil
			res.Outcomes[i] = out
		}(i, h)
	}
	wg.Wait()

	res.Duration = time.Since(start)
	p.metrics.poolDone(res.Duration)
	p.logger.Info("pool finished",
		logpkg.Int("requested", res.Requested),
		logpkg.Int("spawned", res.Spawned()),
		logpkg.Int("failures", len(res.Failures())),
		logpkg.Dur("elapsed", res.Duration),
	)
	return res
}

func (p *Pool) report(o Outcome) {
	if p.onOutcome == nil {
		return
	}
	p.reportMu.Lock()
	defer p.reportMu.Unlock()
	p.onOutcome(o)
}

func (p *Pool) logOutcome(o Outcome) {
	switch o.Kind {
	case KindSuccess:
		p.logger.Debug("worker consumed", logpkg.Int("worker", o.Worker), logpkg.Int("bytes", o.Length))
	case KindEmpty:
		p.logger.Debug("worker found queue empty", logpkg.Int("worker", o.Worker))
	default:
		p.logger.Warn("worker failed", logpkg.Int("worker", o.Worker), logpkg.Err(o.Err))
	}
}
