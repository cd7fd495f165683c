package scullq

import (
	"encoding/binary"
	"fmt"
)

const (
	keyMeta   = "meta"
	keyState  = "state"
	prefixMsg = "msg/"
)

// queuePrefix returns the base prefix for a queue.
// Format: q/{name}/
func queuePrefix(name string) string {
	return fmt.Sprintf("q/%s/", name)
}

// MetaKey returns the meta record key.
func MetaKey(name string) []byte {
	return []byte(queuePrefix(name) + keyMeta)
}

// StateKey returns the head/tail state key.
func StateKey(name string) []byte {
	return []byte(queuePrefix(name) + keyState)
}

// MsgPrefix returns the prefix for element scanning.
func MsgPrefix(name string) []byte {
	return []byte(queuePrefix(name) + prefixMsg)
}

// MsgKey returns the key of element seq. Sequences are big-endian so
// iteration order equals FIFO order.
func MsgKey(name string, seq uint64) []byte {
	prefix := MsgPrefix(name)
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}

func encodeState(head, tail uint64) []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], head)
	binary.BigEndian.PutUint64(b[8:16], tail)
	return b[:]
}

func decodeState(b []byte) (head, tail uint64, ok bool) {
	if len(b) < 16 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint64(b[0:8]), binary.BigEndian.Uint64(b[8:16]), true
}
