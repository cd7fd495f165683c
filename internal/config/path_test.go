package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/qconsumer" {
		t.Errorf("Expected /custom/data/qconsumer, got %s", got)
	}
}

func TestDefaultDataDirHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	got := DefaultDataDir()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("expected path under %s, got %s", home, got)
	}
	if filepath.Base(got) != ".qconsumer" {
		t.Fatalf("expected .qconsumer dir, got %s", got)
	}
}
