// Package mp4meta reads container-level metadata from QuickTime and MP4
// files using the box structure parser from abema/go-mp4.
package mp4meta

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abema/go-mp4"
	"github.com/couchcryptid/geotag/internal/domain"
)

// macEpochOffset is the number of seconds between the ISO/IEC 14496-12
// epoch (1904-01-01) and the Unix epoch.
const macEpochOffset = 2082844800

// ErrNoMovieHeader is returned when a file has no mvhd box.
var ErrNoMovieHeader = errors.New("no movie header box")

// Reader implements media.ContainerReader.
type Reader struct{}

// New returns a Reader.
func New() *Reader { return &Reader{} }

// ReadContainer parses the box tree of path, skipping media data, and
// reports the creation date, duration and major brand.
func (r *Reader) ReadContainer(ctx context.Context, path string) (domain.ContainerMetadata, error) {
	if err := ctx.Err(); err != nil {
		return domain.ContainerMetadata{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.ContainerMetadata{}, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	var (
		meta      domain.ContainerMetadata
		sawHeader bool
	)
	_, err = mp4.ReadBoxStructure(f, func(h *mp4.ReadHandle) (any, error) {
		if !h.BoxInfo.IsSupportedType() || h.BoxInfo.Type == mp4.BoxTypeMdat() {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, fmt.Errorf("read %s payload: %w", h.BoxInfo.Type, err)
		}

		switch b := box.(type) {
		case *mp4.Ftyp:
			meta.MajorBrand = string(b.MajorBrand[:])
		case *mp4.Mvhd:
			sawHeader = true
			if ct := b.GetCreationTime(); ct > macEpochOffset {
				meta.CreationDate = time.Unix(int64(ct-macEpochOffset), 0).UTC()
			}
			if b.Timescale > 0 {
				meta.Duration = time.Duration(float64(b.GetDuration()) / float64(b.Timescale) * float64(time.Second))
			}
		}
		return h.Expand()
	})
	if err != nil {
		return domain.ContainerMetadata{}, fmt.Errorf("read box structure: %w", err)
	}
	if !sawHeader {
		return domain.ContainerMetadata{}, ErrNoMovieHeader
	}
	return meta, nil
}
