package workerrun

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rzbill/qconsumer/internal/consumer"
	logpkg "github.com/rzbill/qconsumer/pkg/log"
)

type oneShot struct {
	size    int
	msg     []byte
	sizeErr error
}

func (q oneShot) MaxElementSize(context.Context) (int, error) { return q.size, q.sizeErr }
func (q oneShot) Consume(_ context.Context, buf []byte) (int, error) {
	return copy(buf, q.msg), nil
}

func TestReportSuccessRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	out, err := Report(context.Background(), oneShot{size: 8, msg: []byte("hi")}, 5, &buf, logpkg.NewNop())
	require.NoError(t, err)
	require.Equal(t, consumer.KindSuccess, out.Kind)
	require.Equal(t, 0, ExitCode(out))

	got, err := consumer.ReadReport(&buf)
	require.NoError(t, err)
	require.Equal(t, 5, got.Worker)
	require.Equal(t, []byte("hi"), got.Message)
}

func TestReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	out, err := Report(context.Background(), oneShot{size: 8}, 1, &buf, logpkg.NewNop())
	require.NoError(t, err)
	require.Equal(t, consumer.KindEmpty, out.Kind)
	require.Equal(t, 0, ExitCode(out))
}

func TestReportProbeFailure(t *testing.T) {
	var buf bytes.Buffer
	out, err := Report(context.Background(), oneShot{sizeErr: errors.New("ENOTTY")}, 2, &buf, logpkg.NewNop())
	require.NoError(t, err)
	require.Equal(t, consumer.KindFailure, out.Kind)
	require.Equal(t, 1, ExitCode(out))

	got, err := consumer.ReadReport(&buf)
	require.NoError(t, err)
	require.Equal(t, consumer.KindFailure, got.Kind)
	require.Contains(t, got.Err.Error(), "ENOTTY")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("EPIPE") }

func TestReportWriteFailure(t *testing.T) {
	_, err := Report(context.Background(), oneShot{size: 4}, 1, failingWriter{}, logpkg.NewNop())
	require.Error(t, err)
}

func TestLoggerFromEnv(t *testing.T) {
	t.Setenv("QCON_LOG_LEVEL", "debug")
	t.Setenv("QCON_LOG_FORMAT", "json")
	logger, err := LoggerFromEnv()
	require.NoError(t, err)
	require.Equal(t, logpkg.DebugLevel, logger.GetLevel())

	t.Setenv("QCON_LOG_FORMAT", "xml")
	_, err = LoggerFromEnv()
	require.Error(t, err)
}
