package device

import (
	"context"
	"fmt"
	"os"
)

// ScullGetElemSize is SCULL_IOCGETELEMSZ, _IO('k', 1): the scull driver's
// "get maximum element size" request. The ioctl returns the size as its
// result rather than through an argument.
const ScullGetElemSize uint = 'k'<<8 | 1

// FileDevice is a character device opened read-only.
type FileDevice struct {
	f       *os.File
	request uint
}

// OpenFile opens the character device at path read-only.
func OpenFile(path string, request uint) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return NewFileDevice(f, request), nil
}

// NewFileDevice wraps an already open handle, e.g. one inherited from the
// parent process.
func NewFileDevice(f *os.File, request uint) *FileDevice {
	if request == 0 {
		request = ScullGetElemSize
	}
	return &FileDevice{f: f, request: request}
}

// File returns the underlying handle.
func (d *FileDevice) File() *os.File { return d.f }

// MaxElementSize issues the element size ioctl.
func (d *FileDevice) MaxElementSize(_ context.Context) (int, error) {
	n, err := queryElementSize(d.f, d.request)
	if err != nil {
		return 0, fmt.Errorf("ioctl %#x on %s: %w", d.request, d.f.Name(), err)
	}
	if n < 0 {
		return 0, fmt.Errorf("ioctl %#x on %s: negative size %d", d.request, d.f.Name(), n)
	}
	return n, nil
}

// Consume performs one read(2). The call blocks inside the driver and is not
// interrupted by ctx.
func (d *FileDevice) Consume(_ context.Context, buf []byte) (int, error) {
	n, err := readOnce(d.f, buf)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", d.f.Name(), err)
	}
	return n, nil
}

// Close closes the handle.
func (d *FileDevice) Close() error { return d.f.Close() }
