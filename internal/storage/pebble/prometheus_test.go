package pebblestore

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsObserveStoreTraffic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	db, err := Open(Options{DataDir: t.TempDir(), Fsync: FsyncModeNever, Metrics: m})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.Set([]byte("k"), []byte("value")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := db.Get([]byte("k")); err != nil {
		t.Fatalf("get: %v", err)
	}

	if n := testutil.CollectAndCount(m.CommitBytes); n != 1 {
		t.Fatalf("commit collectors=%d", n)
	}
	count, err := testutil.GatherAndCount(reg, "qconsumer_store_read_bytes", "qconsumer_store_commit_bytes")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 2 {
		t.Fatalf("series=%d want 2", count)
	}
}
