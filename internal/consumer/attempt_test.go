package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeElementSize(t *testing.T) {
	ctx := context.Background()

	size, err := ProbeElementSize(ctx, &scriptedQueue{sizes: []sizeReply{{size: 64}}})
	require.NoError(t, err)
	require.Equal(t, 64, size)

	_, err = ProbeElementSize(ctx, &scriptedQueue{sizes: []sizeReply{{err: errors.New("ENOTTY")}}})
	var qe *QueryError
	require.ErrorAs(t, err, &qe)

	_, err = ProbeElementSize(ctx, &scriptedQueue{sizes: []sizeReply{{size: -1}}})
	require.ErrorAs(t, err, &qe)
}

func TestConsumeOnceClassification(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("EIO")

	tests := []struct {
		name     string
		reply    readReply
		size     int
		wantKind Kind
		wantMsg  string
	}{
		{"success", readReply{data: []byte("hello")}, 64, KindSuccess, "hello"},
		{"empty", readReply{}, 64, KindEmpty, ""},
		{"error", readReply{err: boom}, 64, KindFailure, ""},
		{"exactly max size", readReply{data: []byte("12345678")}, 8, KindSuccess, "12345678"},
		{"over-long read", readReply{data: []byte("1234"), n: 9}, 8, KindFailure, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ConsumeOnce(ctx, &scriptedQueue{reads: []readReply{tt.reply}}, tt.size)
			require.Equal(t, tt.wantKind, out.Kind)
			require.Equal(t, tt.wantMsg, string(out.Message))
			require.Equal(t, len(tt.wantMsg), out.Length)
			if tt.wantKind == KindFailure {
				var ce *ConsumeError
				require.ErrorAs(t, out.Err, &ce)
			}
		})
	}
}

func TestConsumeOnceFullBufferHasNoSpareByte(t *testing.T) {
	q := &scriptedQueue{reads: []readReply{{data: []byte("abcd")}}}
	out := ConsumeOnce(context.Background(), q, 4)
	require.Equal(t, KindSuccess, out.Kind)
	require.Equal(t, 4, out.Length)
	require.Len(t, out.Message, 4)
	require.Equal(t, 4, cap(out.Message))
}

func TestConsumeErrorIsNotRetried(t *testing.T) {
	q := &scriptedQueue{reads: []readReply{{err: errors.New("EIO")}, {data: []byte("late")}}}
	out := ConsumeOnce(context.Background(), q, 8)
	require.Equal(t, KindFailure, out.Kind)
	_, consumes := q.counts()
	require.Equal(t, 1, consumes)
}

func TestAttemptProbeFailureSkipsConsume(t *testing.T) {
	q := &scriptedQueue{
		sizes: []sizeReply{{err: errors.New("ioctl failed")}},
		reads: []readReply{{data: []byte("x")}},
	}
	out := Attempt(context.Background(), q)
	require.Equal(t, KindFailure, out.Kind)
	var qe *QueryError
	require.ErrorAs(t, out.Err, &qe)
	probes, consumes := q.counts()
	require.Equal(t, 1, probes)
	require.Zero(t, consumes)
}

func TestAttemptUsesProbedBound(t *testing.T) {
	q := &scriptedQueue{
		sizes: []sizeReply{{size: 3}},
		reads: []readReply{{data: []byte("abcdef")}},
	}
	out := Attempt(context.Background(), q)
	require.Equal(t, KindSuccess, out.Kind)
	require.Equal(t, "abc", string(out.Message))
}
