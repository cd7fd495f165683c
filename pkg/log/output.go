package log

import (
	"io"
	"os"
	"sync"
)

// WriterOutput writes formatted entries to an io.Writer. Writes are
// serialized so concurrent workers never interleave partial lines.
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOutput returns an Output writing to w.
func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

// NewConsoleOutput returns an Output writing to stderr.
func NewConsoleOutput() *WriterOutput {
	return NewWriterOutput(os.Stderr)
}

// Write implements Output.
func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close implements Output. The underlying writer is owned by the caller.
func (o *WriterOutput) Close() error { return nil }

// NullOutput discards everything.
type NullOutput struct{}

func (NullOutput) Write(*Entry, []byte) error { return nil }
func (NullOutput) Close() error               { return nil }

// NewNop returns a logger that discards all entries.
func NewNop() Logger {
	return NewLogger(WithOutput(NullOutput{}), WithLevel(ErrorLevel+1))
}
