package config

import (
	"os"
	"strconv"
)

// FromEnv overlays QCON_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("QCON_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("QCON_DEVICE"); v != "" {
		cfg.Device = v
	}
	if v := os.Getenv("QCON_ISOLATION"); v != "" {
		cfg.Isolation = v
	}
	if v := os.Getenv("QCON_PROBE_REQUEST"); v != "" {
		if n, err := strconv.ParseUint(v, 0, 64); err == nil {
			cfg.ProbeRequest = uint(n)
		}
	}
	if v := os.Getenv("QCON_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("QCON_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("QCON_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QCON_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("QCON_METRICS_TEXTFILE"); v != "" {
		cfg.MetricsTextfile = v
	}
}
