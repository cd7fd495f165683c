package consumer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportRoundTrip(t *testing.T) {
	tests := []Outcome{
		Success([]byte("hello")),
		Empty(),
		Failure(errors.New("read: EIO")),
	}
	for _, in := range tests {
		in.Worker = 4
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, in))
		out, err := ReadReport(&buf)
		require.NoError(t, err)
		require.Equal(t, in.Kind, out.Kind)
		require.Equal(t, in.Length, out.Length)
		require.Equal(t, string(in.Message), string(out.Message))
		require.Equal(t, 4, out.Worker)
		if in.Kind == KindFailure {
			var we *WorkerError
			require.ErrorAs(t, out.Err, &we)
			require.Equal(t, "read: EIO", we.Message)
		}
	}
}

func TestReadReportRejectsGarbage(t *testing.T) {
	_, err := ReadReport(bytes.NewBufferString(""))
	require.Error(t, err)
	_, err = ReadReport(bytes.NewBufferString(`{"outcome":"maybe"}`))
	require.Error(t, err)
	_, err = ReadReport(bytes.NewBufferString(`{"outcome":"success","length":9,"message":"aGk="}`))
	require.Error(t, err)
}

// TestHelperProcess is not a real test. ProcessSpawner tests re-execute the
// test binary into it to play the part of a worker process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("QCON_WANT_HELPER") != "1" {
		return
	}
	worker := 0
	for i, a := range os.Args {
		if a == "--worker" && i+1 < len(os.Args) {
			worker, _ = strconv.Atoi(os.Args[i+1])
		}
	}
	var out Outcome
	if os.Getenv("QCON_HELPER_FAIL") == "1" {
		out = Failure(errors.New("simulated consume error"))
	} else {
		f := os.NewFile(InheritedFD, "device")
		out = ConsumeOnce(context.Background(), fileReader{f}, 5)
	}
	out.Worker = worker
	_ = WriteReport(os.Stdout, out)
	if out.OK() {
		os.Exit(0)
	}
	os.Exit(1)
}

type fileReader struct{ f *os.File }

func (r fileReader) Consume(_ context.Context, buf []byte) (int, error) {
	n, err := r.f.Read(buf)
	if n == 0 {
		return 0, nil
	}
	return n, err
}

func helperSpawner(t *testing.T, content string, env ...string) *ProcessSpawner {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return &ProcessSpawner{
		Path: os.Args[0],
		Args: []string{"-test.run=^TestHelperProcess$", "--"},
		File: f,
		Env:  append([]string{"QCON_WANT_HELPER=1"}, env...),
	}
}

func TestProcessSpawnerSuccess(t *testing.T) {
	s := helperSpawner(t, "hello world")
	var got string
	p, err := NewPool(s, 1, WithOnOutcome(func(o Outcome) { got = string(o.Message) }))
	require.NoError(t, err)
	res := p.Run(context.Background())
	require.True(t, res.OK(), "err: %v", res.Err())
	require.Equal(t, "hello", got)
	require.Equal(t, 5, res.Outcomes[0].Length)
}

func TestProcessSpawnerSharesHandleAcrossWorkers(t *testing.T) {
	// Two workers read five bytes each from one inherited offset.
	s := helperSpawner(t, "aaaaabbbbb")
	p, _ := NewPool(s, 3)
	res := p.Run(context.Background())
	require.True(t, res.OK(), "err: %v", res.Err())
	require.Len(t, res.Successes(), 2)
	require.Equal(t, 3, res.Spawned())
}

func TestProcessSpawnerFailure(t *testing.T) {
	s := helperSpawner(t, "x", "QCON_HELPER_FAIL=1")
	p, _ := NewPool(s, 2)
	res := p.Run(context.Background())
	require.False(t, res.OK())
	require.Len(t, res.Failures(), 2)
	var we *WorkerError
	require.ErrorAs(t, res.Failures()[0].Err, &we)
}

func TestProcessSpawnerStartError(t *testing.T) {
	s := helperSpawner(t, "x")
	s.Path = filepath.Join(t.TempDir(), "missing-binary")
	p, _ := NewPool(s, 3)
	res := p.Run(context.Background())
	require.False(t, res.OK())
	require.Zero(t, res.Spawned())
	var se *SpawnError
	require.ErrorAs(t, res.SpawnErr, &se)
	require.Equal(t, 1, se.Worker)
}
