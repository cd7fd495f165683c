package scullq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pebblestore "github.com/rzbill/qconsumer/internal/storage/pebble"
)

// DefaultElementSize matches the scull driver's default element size.
const DefaultElementSize = 32

// Meta holds queue metadata.
type Meta struct {
	Name        string `json:"name"`
	ElementSize int    `json:"elementSize"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// EnsureMeta creates the meta record if absent and returns the effective
// meta. An existing record is returned unchanged; elementSize only applies
// to new queues (<= 0 selects DefaultElementSize).
func EnsureMeta(db *pebblestore.DB, name string, elementSize int) (Meta, error) {
	m, err := LoadMeta(db, name)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, pebblestore.ErrNotFound) {
		return Meta{}, err
	}
	if elementSize <= 0 {
		elementSize = DefaultElementSize
	}
	m = Meta{Name: name, ElementSize: elementSize, CreatedAtMs: time.Now().UnixMilli()}
	if err := storeMeta(db, m); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// LoadMeta reads the meta record of queue name.
func LoadMeta(db *pebblestore.DB, name string) (Meta, error) {
	b, err := db.Get(MetaKey(name))
	if err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, fmt.Errorf("decode meta %s: %w", name, err)
	}
	return m, nil
}

func storeMeta(db *pebblestore.DB, m Meta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return db.Set(MetaKey(m.Name), b)
}
