package pebblestore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics is a MetricsHook backed by Prometheus histograms.
type PrometheusMetrics struct {
	ReadSeconds   prometheus.Histogram
	ReadBytes     prometheus.Histogram
	CommitSeconds prometheus.Histogram
	CommitBytes   prometheus.Histogram
}

// NewPrometheusMetrics creates the store collectors and registers them with
// reg when reg is not nil.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	sizes := prometheus.ExponentialBuckets(16, 4, 8)
	m := &PrometheusMetrics{
		ReadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qconsumer", Subsystem: "store", Name: "read_seconds",
			Help: "Latency of point reads.", Buckets: prometheus.DefBuckets,
		}),
		ReadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qconsumer", Subsystem: "store", Name: "read_bytes",
			Help: "Value size of point reads.", Buckets: sizes,
		}),
		CommitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qconsumer", Subsystem: "store", Name: "commit_seconds",
			Help: "Latency of batch commits.", Buckets: prometheus.DefBuckets,
		}),
		CommitBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qconsumer", Subsystem: "store", Name: "commit_bytes",
			Help: "Encoded size of committed batches.", Buckets: sizes,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ReadSeconds, m.ReadBytes, m.CommitSeconds, m.CommitBytes)
	}
	return m
}

func (m *PrometheusMetrics) ObserveRead(elapsed time.Duration, bytes int) {
	m.ReadSeconds.Observe(elapsed.Seconds())
	m.ReadBytes.Observe(float64(bytes))
}

func (m *PrometheusMetrics) ObserveBatchCommit(elapsed time.Duration, bytes int) {
	m.CommitSeconds.Observe(elapsed.Seconds())
	m.CommitBytes.Observe(float64(bytes))
}
