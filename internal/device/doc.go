// Package device opens the shared queue resource consumed by workers.
//
// A Device answers two questions: how large may one element be
// (MaxElementSize) and what is the next element (Consume, blocking). Two
// backends are provided:
//
//   - a character device such as /dev/scull, queried with an ioctl and read
//     with read(2);
//   - "pebble://<dir>?queue=<name>", a persistent queue stored in Pebble.
//
// Open picks the backend from the identifier.
package device
