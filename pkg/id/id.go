package id

import (
	"encoding/binary"
	"encoding/hex"
	"os"
	"sync"
	"time"
)

// RunID identifies one consume invocation.
type RunID [16]byte

// String returns the hex encoding.
func (r RunID) String() string { return hex.EncodeToString(r[:]) }

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Generator produces increasing RunIDs for this process.
type Generator struct {
	mu      sync.Mutex
	pid     uint32
	lastMs  int64
	counter uint32
}

// NewGenerator creates a Generator bound to the current process id.
func NewGenerator() *Generator { return &Generator{pid: uint32(os.Getpid())} }

// Next returns a new RunID. A regressing clock is pinned to the last seen
// millisecond so IDs never go backwards.
func (g *Generator) Next() RunID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}
	if ms == g.lastMs {
		g.counter++
	} else {
		g.counter = 0
	}
	g.lastMs = ms

	var r RunID
	binary.BigEndian.PutUint64(r[0:8], uint64(ms))
	binary.BigEndian.PutUint32(r[8:12], g.pid)
	binary.BigEndian.PutUint32(r[12:16], g.counter)
	return r
}
