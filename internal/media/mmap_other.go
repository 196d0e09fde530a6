//go:build !unix

package media

import (
	"os"

	"github.com/couchcryptid/geotag/internal/domain"
)

// mapFile reads the whole file on platforms without mmap support.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, domain.NewError(domain.FileAccess, path, err)
	}
	return data, func() error { return nil }, nil
}
