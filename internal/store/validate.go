package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/tidwall/gjson"
)

// Duplicate is a pair of features sharing both name and DateTime.
type Duplicate struct {
	Name     string
	DateTime string
	First    int
	Second   int
}

// ValidationReport summarizes a store document without modifying it.
type ValidationReport struct {
	Path           string
	Features       int
	Problems       []string // per-feature shape errors
	Duplicates     []Duplicate
	NameCollisions []string // names recorded with more than one DateTime
	UnknownPlaces  int
}

// OK reports whether the document would load without being treated as
// corrupt and holds no duplicate features.
func (r ValidationReport) OK() bool {
	return len(r.Problems) == 0 && len(r.Duplicates) == 0
}

// Validate inspects the document at path and reports every problem found,
// rather than stopping at the first as Load does. A file that is not a JSON
// feature collection at all is returned as a CorruptStore error.
func Validate(path string) (ValidationReport, error) {
	report := ValidationReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return report, domain.NewError(domain.FileAccess, path, err)
	}
	if !gjson.ValidBytes(data) {
		return report, domain.NewError(domain.CorruptStore, path, errors.New("invalid JSON"))
	}
	doc := gjson.ParseBytes(data)
	if doc.Get("type").String() != "FeatureCollection" || !doc.Get("features").IsArray() {
		return report, domain.NewError(domain.CorruptStore, path, errors.New("not a FeatureCollection"))
	}

	type seen struct {
		index    int
		dateTime string
	}
	byName := make(map[string][]seen)
	collided := make(map[string]bool)

	for i, f := range doc.Get("features").Array() {
		report.Features++
		if err := checkFeature(f); err != nil {
			report.Problems = append(report.Problems, fmt.Sprintf("feature %d: %v", i, err))
		}

		props := f.Get("properties")
		if props.Get("country").String() == domain.UnknownValue {
			report.UnknownPlaces++
		}

		name, dt := props.Get("name").String(), props.Get("DateTime").String()
		if name == "" {
			continue
		}
		for _, prev := range byName[name] {
			if prev.dateTime == dt {
				report.Duplicates = append(report.Duplicates, Duplicate{
					Name: name, DateTime: dt, First: prev.index, Second: i,
				})
			} else if !collided[name] {
				collided[name] = true
				report.NameCollisions = append(report.NameCollisions, name)
			}
		}
		byName[name] = append(byName[name], seen{index: i, dateTime: dt})
	}
	return report, nil
}
