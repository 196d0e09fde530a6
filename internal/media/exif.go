package media

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/rwcarlsen/goexif/exif"
)

// instagramSoftware is the Software tag value that marks an image exported by
// Instagram; such images carry no capture date.
const instagramSoftware = "Instagram"

// ExifExtractor reads GPS position and capture details from photo EXIF.
type ExifExtractor struct{}

// Extract opens path and decodes its EXIF once.
func (ExifExtractor) Extract(path string) (domain.GpsCoordinate, domain.CaptureMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.GpsCoordinate{}, domain.CaptureMetadata{}, domain.NewError(domain.FileAccess, path, err)
	}
	defer f.Close()

	gps, meta, err := DecodeExif(f)
	if err != nil {
		return domain.GpsCoordinate{}, domain.CaptureMetadata{}, domain.NewError(domain.MetadataParse, path, err)
	}
	return gps, meta, nil
}

// DecodeExif extracts GPS and capture metadata from an EXIF-bearing stream.
// Partially damaged tag sets are used as far as they go.
func DecodeExif(r io.Reader) (domain.GpsCoordinate, domain.CaptureMetadata, error) {
	x, err := exif.Decode(r)
	if err != nil && exif.IsCriticalError(err) {
		return domain.GpsCoordinate{}, domain.CaptureMetadata{}, fmt.Errorf("decode exif: %w", err)
	}
	return gpsFromExif(x), metadataFromExif(x), nil
}

func gpsFromExif(x *exif.Exif) domain.GpsCoordinate {
	lat, ok := degrees(x, exif.GPSLatitude, exif.GPSLatitudeRef, "N")
	if !ok {
		return domain.GpsCoordinate{}
	}
	lon, ok := degrees(x, exif.GPSLongitude, exif.GPSLongitudeRef, "E")
	if !ok {
		return domain.GpsCoordinate{}
	}
	return domain.NewGpsCoordinate(lat, lon)
}

// degrees converts a DMS rational triple to decimal degrees, negated unless
// the reference tag equals positive.
func degrees(x *exif.Exif, field, refField exif.FieldName, positive string) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil || tag.Count < 3 {
		return 0, false
	}
	var parts [3]float64
	for i := range parts {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return 0, false
		}
		parts[i] = float64(num) / float64(den)
	}
	value := parts[0] + parts[1]/60 + parts[2]/3600

	ref, ok := stringTag(x, refField)
	if !ok {
		return 0, false
	}
	if !strings.EqualFold(ref, positive) {
		value = -value
	}
	return value, true
}

func metadataFromExif(x *exif.Exif) domain.CaptureMetadata {
	var meta domain.CaptureMetadata
	meta.CapturedAt, _ = stringTag(x, exif.DateTimeOriginal)
	meta.Device, _ = stringTag(x, exif.Model)

	switch {
	case yearOf(x, exif.DateTime) != "":
		meta.Year = yearOf(x, exif.DateTime)
	case yearOf(x, exif.DateTimeOriginal) != "":
		meta.Year = yearOf(x, exif.DateTimeOriginal)
	default:
		if sw, _ := stringTag(x, exif.Software); sw == instagramSoftware {
			meta.Year = instagramSoftware
		}
	}
	return meta
}

// yearOf returns the year component of an EXIF timestamp tag. Values that do
// not parse fall back to the text before the first colon, which is how
// cameras with odd separators still report a year.
func yearOf(x *exif.Exif, field exif.FieldName) string {
	s, ok := stringTag(x, field)
	if !ok {
		return ""
	}
	if t, err := time.Parse(domain.CaptureLayout, s); err == nil {
		return t.Format("2006")
	}
	date, _, _ := strings.Cut(s, " ")
	year, _, _ := strings.Cut(date, ":")
	return year
}

func stringTag(x *exif.Exif, field exif.FieldName) (string, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return "", false
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	return s, s != ""
}
