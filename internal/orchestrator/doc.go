// Package orchestrator validates a consume request, opens the shared
// device, runs the worker pool against it and maps the pool result to a
// single success or failure. It is the only layer that writes user-facing
// text: the device open/close notices and one "read: <message>" line per
// consumed message.
package orchestrator
