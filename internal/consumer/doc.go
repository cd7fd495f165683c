// Package consumer runs a fixed number of isolated workers against a shared
// queue. Each worker performs exactly one attempt:
//
//  1. ProbeElementSize asks the queue for its current maximum element size.
//     Every worker probes on its own; the bound is never cached or shared.
//  2. ConsumeOnce allocates a private buffer of that size and performs one
//     blocking consume, classifying the result as Success, Empty or Failure.
//
// A Pool spawns the workers sequentially through a Spawner. If a spawn fails
// no further workers are started, but every worker already running is still
// joined before the pool reports. The pool fails when a spawn failed or any
// worker's outcome is Failure; Empty outcomes are not failures.
//
// Two spawners are provided: GoroutineSpawner runs workers in-process, each
// on its own goroutine with panic isolation, and ProcessSpawner re-executes
// the binary once per worker and hands it the shared device handle.
package consumer
