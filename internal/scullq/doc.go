// Package scullq implements a persistent, bounded-element FIFO on Pebble.
//
// It is the storage-backed stand-in for the scull character device: every
// queue has a maximum element size recorded in its meta record, producers
// cannot enqueue larger payloads, and consumers block until an element is
// available. Each element is delivered to exactly one consumer.
//
// # Keyspace
//
// All keys are prefixed with q/{name}/:
//
//	meta           - JSON Meta (name, element size, creation time)
//	state          - head (8B BE) | tail (8B BE)
//	msg/{seq}      - record: payload | crc32c(payload); seq is 8B BE
//
// head is the next sequence to consume and tail the last one enqueued; the
// queue is empty when head > tail.
package scullq
