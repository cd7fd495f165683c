package consumerun

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/rzbill/qconsumer/internal/config"
	"github.com/rzbill/qconsumer/internal/device"
	"github.com/rzbill/qconsumer/internal/orchestrator"
	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

func seedQueue(t *testing.T, ident string, msgs ...string) {
	t.Helper()
	ctx := context.Background()
	dev, err := device.Open(ctx, ident, device.Options{})
	require.NoError(t, err)
	q := dev.(*device.PebbleDevice).Queue()
	for _, m := range msgs {
		_, err := q.Enqueue(ctx, []byte(m))
		require.NoError(t, err)
	}
	require.NoError(t, dev.Close())
}

func pebbleConfig(t *testing.T, n int) cfgpkg.Config {
	cfg := cfgpkg.Default()
	cfg.Concurrency = n
	cfg.Isolation = cfgpkg.IsolationGoroutine
	cfg.Fsync = cfgpkg.FsyncNever
	cfg.Device = "pebble://" + filepath.Join(t.TempDir(), "store") + "?queue=scull&elementSize=16&nonblocking=1"
	return cfg
}

func TestRunRejectsInvalidConcurrency(t *testing.T) {
	for _, n := range []int{0, -3, 21} {
		cfg := pebbleConfig(t, n)
		_, err := Run(context.Background(), Options{Config: cfg, Logger: logpkg.NewNop(), Out: &bytes.Buffer{}})
		var ce *orchestrator.ConfigurationError
		require.ErrorAs(t, err, &ce)
		require.Contains(t, err.Error(), "Invalid value (")
	}
}

func TestRunRejectsPebbleWithProcessIsolation(t *testing.T) {
	cfg := pebbleConfig(t, 1)
	cfg.Isolation = cfgpkg.IsolationProcess
	_, err := Run(context.Background(), Options{Config: cfg, Logger: logpkg.NewNop(), Out: &bytes.Buffer{}})
	var ce *orchestrator.ConfigurationError
	require.ErrorAs(t, err, &ce)
	require.Contains(t, err.Error(), "goroutine isolation")
}

func TestRunConsumesAndWritesTextfile(t *testing.T) {
	cfg := pebbleConfig(t, 4)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "qconsumer.prom")
	seedQueue(t, cfg.Device, "alpha", "beta")

	var out bytes.Buffer
	res, err := Run(context.Background(), Options{
		Config:   cfg,
		Logger:   logpkg.NewNop(),
		Out:      &out,
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	require.Equal(t, 4, res.Spawned())
	require.Len(t, res.Successes(), 2)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasSuffix(lines[0], "opened"))
	require.True(t, strings.HasSuffix(lines[3], "closed"))

	prom, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `qconsumer_worker_outcomes_total{outcome="success"} 2`)
	require.Contains(t, string(prom), `qconsumer_worker_outcomes_total{outcome="empty"} 2`)
	require.Contains(t, string(prom), "qconsumer_workers_spawned_total 4")
}

func TestRunOpenFailure(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Device = filepath.Join(t.TempDir(), "missing-device")
	var out bytes.Buffer
	_, err := Run(context.Background(), Options{Config: cfg, Logger: logpkg.NewNop(), Out: &out})
	var oe *orchestrator.ResourceOpenError
	require.ErrorAs(t, err, &oe)
	require.Empty(t, out.String())
}

func TestWorkerArgs(t *testing.T) {
	cfg := cfgpkg.Default()
	require.Equal(t, []string{"worker"}, WorkerArgs(cfg))
	cfg.ProbeRequest = 0x6b01
	require.Equal(t, []string{"worker", "--probe-request", "0x6b01"}, WorkerArgs(cfg))
}
