package device

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rzbill/qconsumer/internal/config"
	"github.com/rzbill/qconsumer/internal/scullq"
	pebblestore "github.com/rzbill/qconsumer/internal/storage/pebble"
)

// PebbleTarget is a parsed "pebble://<dir>?queue=<name>" identifier.
type PebbleTarget struct {
	Dir         string
	Queue       string
	ElementSize int
	NonBlocking bool
}

// ParsePebble parses a pebble device identifier. Recognised query keys are
// queue (default "scull"), elementSize (used when the queue is created) and
// nonblocking.
func ParsePebble(identifier string) (PebbleTarget, error) {
	rest, ok := strings.CutPrefix(identifier, config.PebbleScheme)
	if !ok {
		return PebbleTarget{}, fmt.Errorf("device: %q is not a pebble identifier", identifier)
	}
	dir, rawQuery, _ := strings.Cut(rest, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return PebbleTarget{}, fmt.Errorf("device: parse query: %w", err)
	}
	t := PebbleTarget{Dir: dir, Queue: query.Get("queue")}
	if t.Dir == "" {
		t.Dir = filepath.Join(config.DefaultDataDir(), "store")
	}
	if t.Queue == "" {
		t.Queue = "scull"
	}
	if v := query.Get("elementSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return PebbleTarget{}, fmt.Errorf("device: invalid elementSize %q", v)
		}
		t.ElementSize = n
	}
	if v := query.Get("nonblocking"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return PebbleTarget{}, fmt.Errorf("device: invalid nonblocking %q", v)
		}
		t.NonBlocking = b
	}
	return t, nil
}

// PebbleDevice serves a scullq queue. It owns the Pebble store it opened.
type PebbleDevice struct {
	db    *pebblestore.DB
	queue *scullq.Queue
}

func openPebble(identifier string, opts Options) (*PebbleDevice, error) {
	t, err := ParsePebble(identifier)
	if err != nil {
		return nil, err
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       t.Dir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       opts.StoreMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", t.Dir, err)
	}
	q, err := scullq.Open(db, t.Queue, scullq.Options{ElementSize: t.ElementSize, NonBlocking: t.NonBlocking})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PebbleDevice{db: db, queue: q}, nil
}

// Queue exposes the underlying queue.
func (d *PebbleDevice) Queue() *scullq.Queue { return d.queue }

// MaxElementSize implements Device.
func (d *PebbleDevice) MaxElementSize(_ context.Context) (int, error) {
	return d.queue.MaxElementSize()
}

// Consume implements Device.
func (d *PebbleDevice) Consume(ctx context.Context, buf []byte) (int, error) {
	return d.queue.Consume(ctx, buf)
}

// Close wakes blocked consumers and closes the store.
func (d *PebbleDevice) Close() error {
	return errors.Join(d.queue.Close(), d.db.Close())
}
