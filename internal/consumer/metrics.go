package consumer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "qconsumer"

// Metrics are the pool's Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	WorkersSpawned prometheus.Counter
	SpawnFailures  prometheus.Counter
	Outcomes       *prometheus.CounterVec
	MessageBytes   prometheus.Histogram
	PoolDuration   prometheus.Histogram
}

// NewMetrics creates the pool collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WorkersSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "workers_spawned_total",
			Help:      "Workers started successfully.",
		}),
		SpawnFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "spawn_failures_total",
			Help:      "Worker starts that failed and stopped further spawning.",
		}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "worker_outcomes_total",
			Help:      "Terminal worker outcomes by kind.",
		}, []string{"outcome"}),
		MessageBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "consume_bytes",
			Help:      "Size of messages returned by successful consumes.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		PoolDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pool_duration_seconds",
			Help:      "Wall time from first spawn to last join.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.WorkersSpawned, m.SpawnFailures, m.Outcomes, m.MessageBytes, m.PoolDuration)
	}
	return m
}

func (m *Metrics) spawned() {
	if m != nil {
		m.WorkersSpawned.Inc()
	}
}

func (m *Metrics) spawnFailed() {
	if m != nil {
		m.SpawnFailures.Inc()
	}
}

func (m *Metrics) outcome(o Outcome) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(o.Kind.String()).Inc()
	if o.Kind == KindSuccess {
		m.MessageBytes.Observe(float64(o.Length))
	}
}

func (m *Metrics) poolDone(d time.Duration) {
	if m != nil {
		m.PoolDuration.Observe(d.Seconds())
	}
}
