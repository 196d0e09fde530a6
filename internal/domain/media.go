package domain

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// MediaKind is the result of classifying a file.
type MediaKind int

const (
	Unsupported MediaKind = iota
	Photo
	Video
)

func (k MediaKind) String() string {
	switch k {
	case Photo:
		return "photo"
	case Video:
		return "video"
	default:
		return "unsupported"
	}
}

// MediaFile identifies a file under the input root.
type MediaFile struct {
	Path string // absolute
	Name string // base name, dedup key component
	Ext  string // lower-case, with leading dot
}

// NewMediaFile resolves path to an absolute path and derives the name and
// extension.
func NewMediaFile(path string) (MediaFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return MediaFile{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	name := filepath.Base(abs)
	return MediaFile{
		Path: abs,
		Name: name,
		Ext:  strings.ToLower(filepath.Ext(name)),
	}, nil
}

// GpsCoordinate is a decimal-degree position. Either field may be nil when
// the source carried no usable value.
type GpsCoordinate struct {
	Latitude  *float64
	Longitude *float64
}

// NewGpsCoordinate returns a coordinate holding lat and lon, or an absent
// coordinate if either is NaN or out of range.
func NewGpsCoordinate(lat, lon float64) GpsCoordinate {
	if !inRange(lat, 90) || !inRange(lon, 180) {
		return GpsCoordinate{}
	}
	return GpsCoordinate{Latitude: &lat, Longitude: &lon}
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// Valid reports whether both components are present and in range.
func (g GpsCoordinate) Valid() bool {
	if g.Latitude == nil || g.Longitude == nil {
		return false
	}
	return inRange(*g.Latitude, 90) && inRange(*g.Longitude, 180)
}

// LatLon returns the components. Callers must check Valid first.
func (g GpsCoordinate) LatLon() (float64, float64) {
	return *g.Latitude, *g.Longitude
}

func (g GpsCoordinate) String() string {
	if !g.Valid() {
		return "none"
	}
	return fmt.Sprintf("%.6f,%.6f", *g.Latitude, *g.Longitude)
}

// CaptureMetadata holds what an extractor learned about when and with what a
// file was captured. Empty fields are absent.
type CaptureMetadata struct {
	CapturedAt string // "2006:01:02 15:04:05"
	Year       string
	Device     string
}

// CaptureLayout is the EXIF timestamp layout, also used for videos.
const CaptureLayout = "2006:01:02 15:04:05"

// VideoDevice is the device recorded for every video.
const VideoDevice = "iPhoneCamera"

// DateTime returns CapturedAt, or NoneValue when absent. This is the value
// stored in the feature and used as the dedup key.
func (m CaptureMetadata) DateTime() string {
	return orNone(m.CapturedAt)
}

// ContainerMetadata is what a QuickTime/MP4 container reader reports.
type ContainerMetadata struct {
	CreationDate time.Time
	MajorBrand   string
	Duration     time.Duration
}

// CaptureFromContainer derives video capture metadata from the container's
// creation date. A zero date yields no timestamp or year.
func CaptureFromContainer(c ContainerMetadata) CaptureMetadata {
	meta := CaptureMetadata{Device: VideoDevice}
	if c.CreationDate.IsZero() {
		return meta
	}
	t := c.CreationDate.UTC()
	meta.CapturedAt = t.Format(CaptureLayout)
	meta.Year = t.Format("2006")
	return meta
}

// NoneValue marks absent metadata in stored features.
const NoneValue = "none"

func orNone(s string) string {
	if s == "" {
		return NoneValue
	}
	return s
}
