//go:build unix

package media

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/geotag/internal/domain"
	"golang.org/x/sys/unix"
)

// mapFile maps path read-only into memory. The returned release func must
// be called once the bytes are no longer used.
func mapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, domain.NewError(domain.FileAccess, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, domain.NewError(domain.FileAccess, path, err)
	}
	size := info.Size()
	if size == 0 {
		return nil, func() error { return nil }, nil
	}
	if size > math.MaxInt {
		return nil, nil, domain.NewError(domain.MemoryMapLimit, path,
			fmt.Errorf("file size %d exceeds address space", size))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		kind := domain.FileAccess
		if errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.EFBIG) || errors.Is(err, unix.EOVERFLOW) {
			kind = domain.MemoryMapLimit
		}
		return nil, nil, domain.NewError(kind, path, fmt.Errorf("mmap: %w", err))
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
