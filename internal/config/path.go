package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the directory used for a pebble device whose
// identifier carries no path ("pebble://?queue=x").
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "qconsumer")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "qconsumer")
	}
	return filepath.Join(homeDir, ".qconsumer")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
