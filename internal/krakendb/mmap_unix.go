// internal/krakendb/mmap_unix.go

//go:build unix

package krakendb

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func mapFile(path string) ([]byte, func() error, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()
	st, err := fh.Stat()
	if err != nil {
		return nil, nil, err
	}
	if st.Size() == 0 {
		return nil, nil, errors.Wrapf(ErrFormat, "%s is empty", path)
	}
	data, err := unix.Mmap(int(fh.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "mmap %s", path)
	}
	// Lookups are binary searches inside small bins.
	_ = unix.Madvise(data, unix.MADV_RANDOM)
	return data, func() error { return unix.Munmap(data) }, nil
}
