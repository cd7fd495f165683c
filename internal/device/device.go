package device

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rzbill/qconsumer/internal/config"
	pebblestore "github.com/rzbill/qconsumer/internal/storage/pebble"
)

// ErrUnsupported is returned when the backend cannot answer a request on
// this platform or device.
var ErrUnsupported = errors.New("device: operation not supported")

// Device is the shared queue resource.
type Device interface {
	// MaxElementSize returns the current maximum element size in bytes.
	MaxElementSize(ctx context.Context) (int, error)
	// Consume reads one element into buf, returning the number of bytes
	// read. Zero bytes means the queue had nothing to deliver.
	Consume(ctx context.Context, buf []byte) (int, error)
	Close() error
}

// FileBacked is implemented by devices whose handle is an open file that can
// be inherited by worker processes.
type FileBacked interface {
	File() *os.File
}

// Options tune backend specific behaviour.
type Options struct {
	// ProbeRequest is the ioctl request number answering the element size
	// of a character device. Zero selects ScullGetElemSize.
	ProbeRequest uint
	// Fsync and FsyncInterval apply to pebble devices.
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	// StoreMetrics observes pebble reads and commits. Optional.
	StoreMetrics pebblestore.MetricsHook
}

// Open opens the device named by identifier.
func Open(ctx context.Context, identifier string, opts Options) (Device, error) {
	if identifier == "" {
		return nil, errors.New("device: empty identifier")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.HasPrefix(identifier, config.PebbleScheme) {
		return openPebble(identifier, opts)
	}
	return OpenFile(identifier, opts.ProbeRequest)
}
