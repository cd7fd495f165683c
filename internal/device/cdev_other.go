//go:build !linux

package device

import (
	"errors"
	"io"
	"os"
)

func queryElementSize(*os.File, uint) (int, error) { return 0, ErrUnsupported }

func readOnce(f *os.File, buf []byte) (int, error) {
	n, err := f.Read(buf)
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}
