package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoCoordinate is returned by BuildFeature when the file carries no
// usable position.
var ErrNoCoordinate = errors.New("no valid coordinate")

// Properties are the per-feature attributes. The JSON names are the stored
// format and are read back by earlier runs.
type Properties struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Street   string `json:"street"`
	Postal   string `json:"postal"`
	DateTime string `json:"DateTime"`
	Year     string `json:"Year"`
	Device   string `json:"Device"`
	Path     string `json:"path"`
}

// Feature is a GeoJSON Feature with a Point geometry.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties Properties        `json:"properties"`
}

// Point returns the feature's position, or false if the geometry is not a
// point.
func (f Feature) Point() (orb.Point, bool) {
	if f.Geometry == nil {
		return orb.Point{}, false
	}
	p, ok := f.Geometry.Coordinates.(orb.Point)
	return p, ok
}

// FeatureCollection is the persisted document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection that marshals with a
// non-null feature list.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// Append adds f at the end, preserving existing order.
func (c *FeatureCollection) Append(f Feature) {
	c.Features = append(c.Features, f)
}

// Len returns the number of features.
func (c FeatureCollection) Len() int { return len(c.Features) }

var houseNumber = regexp.MustCompile(`[0-9.]+[a-zA-Z]\s|\s[0-9.]+[a-zA-Z]|[0-9.]+\s|\s[0-9.]+`)

// NormalizeStreet removes house-number tokens such as "221B " or " 12" from
// a street line.
//
//	NormalizeStreet("221B Baker Street") == "Baker Street"
func NormalizeStreet(street string) string {
	return strings.TrimSpace(houseNumber.ReplaceAllString(street, ""))
}

// BuildFeature combines extractor output and a resolved place into a
// Feature. Empty values are stored as NoneValue.
func BuildFeature(file MediaFile, gps GpsCoordinate, meta CaptureMetadata, place GeocodeResult) (Feature, error) {
	if !gps.Valid() {
		return Feature{}, NewError(MetadataParse, file.Path, ErrNoCoordinate)
	}
	lat, lon := gps.LatLon()

	return Feature{
		Type:     "Feature",
		Geometry: geojson.NewGeometry(orb.Point{lon, lat}),
		Properties: Properties{
			Name:     file.Name,
			Country:  orNone(place.Country),
			City:     orNone(place.City),
			Street:   orNone(NormalizeStreet(place.Street)),
			Postal:   orNone(place.PostalCode),
			DateTime: meta.DateTime(),
			Year:     orNone(meta.Year),
			Device:   orNone(meta.Device),
			Path:     file.Path,
		},
	}, nil
}
