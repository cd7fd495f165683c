package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInvalidConcurrencyPrintsUsage(t *testing.T) {
	for _, arg := range []string{"0", "21", "-1", "many"} {
		var stdout, stderr bytes.Buffer
		code := execute([]string{"consume", "--", arg}, &stdout, &stderr)
		if code != 1 {
			t.Fatalf("%s: exit=%d want 1", arg, code)
		}
		if !strings.Contains(stderr.String(), "Invalid value ("+arg+") for concurrency") {
			t.Fatalf("%s: stderr=%q", arg, stderr.String())
		}
		if !strings.Contains(stderr.String(), "Usage:") {
			t.Fatalf("%s: usage missing from %q", arg, stderr.String())
		}
		if stdout.Len() != 0 {
			t.Fatalf("%s: unexpected stdout %q", arg, stdout.String())
		}
	}
}

func TestAliasRunsAgainstEmptyPebbleQueue(t *testing.T) {
	dev := "pebble://" + filepath.Join(t.TempDir(), "store") + "?nonblocking=true"
	var stdout, stderr bytes.Buffer
	code := execute([]string{"p", "3", "--device", dev, "--isolation", "goroutine", "--fsync", "never", "--log-level", "error"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit=%d stderr=%q", code, stderr.String())
	}
	want := "Device (" + dev + ") opened\nDevice (" + dev + ") closed\n"
	if stdout.String() != want {
		t.Fatalf("stdout=%q want %q", stdout.String(), want)
	}
}

func TestMissingDeviceFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"consume", "1", "--device", filepath.Join(t.TempDir(), "nope"), "--log-level", "error"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit=%d want 1", code)
	}
	if !strings.Contains(stderr.String(), "cdev open") {
		t.Fatalf("stderr=%q", stderr.String())
	}
}

func TestHelpAlias(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"h"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d", code)
	}
	if !strings.Contains(stdout.String(), "consume") {
		t.Fatalf("help output=%q", stdout.String())
	}
}

func TestParseRequest(t *testing.T) {
	got, err := parseRequest("0x6b01")
	if err != nil || got != 0x6b01 {
		t.Fatalf("got %#x err=%v", got, err)
	}
	if _, err := parseRequest("k1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConcurrencyFromEnvironmentWhenOmitted(t *testing.T) {
	t.Setenv("QCON_CONCURRENCY", "2")
	dir := t.TempDir()
	dev := "pebble://" + filepath.Join(dir, "store") + "?nonblocking=true"
	prom := filepath.Join(dir, "qconsumer.prom")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"consume", "--device", dev, "--isolation", "goroutine", "--fsync", "never",
		"--log-level", "error", "--metrics-textfile", prom}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit=%d stderr=%q", code, stderr.String())
	}
	b, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(b), "qconsumer_workers_spawned_total 2") {
		t.Fatalf("metrics=%s", b)
	}
}

func TestArgumentOverridesEnvironment(t *testing.T) {
	t.Setenv("QCON_CONCURRENCY", "2")
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"consume", "--", "0"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit=%d want 1", code)
	}
	if !strings.Contains(stderr.String(), "Invalid value (0) for concurrency") {
		t.Fatalf("stderr=%q", stderr.String())
	}
}

func TestInvalidEnvironmentConcurrencyRejected(t *testing.T) {
	t.Setenv("QCON_CONCURRENCY", "30")
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"consume", "--log-level", "error"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit=%d want 1", code)
	}
	if !strings.Contains(stderr.String(), "Invalid value (30) for concurrency") {
		t.Fatalf("stderr=%q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("usage missing: %q", stderr.String())
	}
}
