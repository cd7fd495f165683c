package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Isolation modes for workers.
const (
	IsolationProcess   = "process"
	IsolationGoroutine = "goroutine"
)

// Fsync modes accepted for the pebble queue backend.
const (
	FsyncAlways   = "always"
	FsyncInterval = "interval"
	FsyncNever    = "never"
)

// DefaultDevice is the character device consumed when none is configured.
const DefaultDevice = "/dev/scull"

// PebbleScheme prefixes device identifiers served by the pebble queue backend.
const PebbleScheme = "pebble://"

// Config is the top-level configuration loaded from file/env/flags.
type Config struct {
	Concurrency int    `json:"concurrency"`
	Device      string `json:"device"`
	Isolation   string `json:"isolation"`
	// ProbeRequest overrides the ioctl request number used to query the
	// maximum element size of a character device. Zero keeps the backend default.
	ProbeRequest    uint   `json:"probeRequest"`
	Fsync           string `json:"fsync"`
	FsyncIntervalMs int    `json:"fsyncIntervalMs"`
	LogLevel        string `json:"logLevel"`
	LogFormat       string `json:"logFormat"`
	MetricsTextfile string `json:"metricsTextfile"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Concurrency:     1,
		Device:          DefaultDevice,
		Isolation:       IsolationProcess,
		Fsync:           FsyncAlways,
		FsyncIntervalMs: 5,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// UsesPebble reports whether Device names the pebble queue backend.
func (c Config) UsesPebble() bool {
	return strings.HasPrefix(c.Device, PebbleScheme)
}

// Validate checks enumerated settings. The concurrency range is enforced by
// the orchestrator, which owns the user-facing error text for it.
func (c Config) Validate() error {
	if c.Device == "" {
		return errors.New("device must not be empty")
	}
	switch c.Isolation {
	case IsolationProcess, IsolationGoroutine:
	default:
		return fmt.Errorf("invalid isolation %q; use process|goroutine", c.Isolation)
	}
	switch c.Fsync {
	case FsyncAlways, FsyncInterval, FsyncNever:
	default:
		return fmt.Errorf("invalid fsync %q; use always|interval|never", c.Fsync)
	}
	if c.UsesPebble() && c.Isolation == IsolationProcess {
		// Pebble holds an exclusive directory lock; only one process may open it.
		return errors.New("pebble devices require goroutine isolation")
	}
	return nil
}
