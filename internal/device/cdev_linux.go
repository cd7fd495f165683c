//go:build linux

package device

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func queryElementSize(f *os.File, request uint) (int, error) {
	n, err := unix.IoctlRetInt(int(f.Fd()), request)
	if errors.Is(err, unix.ENOTTY) || errors.Is(err, unix.EINVAL) {
		return 0, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return n, err
}

func readOnce(f *os.File, buf []byte) (int, error) {
	for {
		n, err := unix.Read(int(f.Fd()), buf)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}
