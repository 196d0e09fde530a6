package media

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/couchcryptid/geotag/internal/domain"
)

// iso6709 matches a signed latitude immediately followed by a signed
// longitude, as QuickTime writes them ("+40.4461-079.9822+000.000/"). For
// the device's fixed-width encoding the first group is the same as the first
// eight characters of the match.
var iso6709 = regexp.MustCompile(`([-+]\d+\.\d+)([-+]\d+\.\d+)`)

// ContainerReader reports container-level metadata for a video file.
type ContainerReader interface {
	ReadContainer(ctx context.Context, path string) (domain.ContainerMetadata, error)
}

// VideoExtractor finds the recording position by scanning the raw bytes of a
// video and takes the capture date from the container header.
type VideoExtractor struct {
	container ContainerReader
	logger    *slog.Logger
}

// NewVideoExtractor returns an extractor. container may be nil, in which
// case videos have no capture date.
func NewVideoExtractor(container ContainerReader, logger *slog.Logger) *VideoExtractor {
	return &VideoExtractor{container: container, logger: logger}
}

// Extract memory-maps path, scans it for the first ISO 6709 coordinate pair
// and asks the container reader for the creation date. A container failure
// is logged and leaves the date fields empty.
func (v *VideoExtractor) Extract(ctx context.Context, path string) (domain.GpsCoordinate, domain.CaptureMetadata, error) {
	data, release, err := mapFile(path)
	if err != nil {
		return domain.GpsCoordinate{}, domain.CaptureMetadata{}, err
	}
	gps := ScanISO6709(data)
	if err := release(); err != nil {
		v.logger.Warn("unmapping video failed", "path", path, "error", err)
	}

	meta := domain.CaptureMetadata{Device: domain.VideoDevice}
	if v.container == nil {
		return gps, meta, nil
	}
	c, err := v.container.ReadContainer(ctx, path)
	if err != nil {
		v.logger.Warn("reading container metadata failed",
			"path", path,
			"error", domain.NewError(domain.MetadataParse, path, err),
		)
		return gps, meta, nil
	}
	return gps, domain.CaptureFromContainer(c), nil
}

// ScanISO6709 returns the first coordinate pair found in data. A match that
// is out of range yields an absent coordinate; later matches are not tried.
func ScanISO6709(data []byte) domain.GpsCoordinate {
	m := iso6709.FindSubmatch(data)
	if m == nil {
		return domain.GpsCoordinate{}
	}
	lat, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return domain.GpsCoordinate{}
	}
	lon, err := strconv.ParseFloat(string(m[2]), 64)
	if err != nil {
		return domain.GpsCoordinate{}
	}
	return domain.NewGpsCoordinate(lat, lon)
}
