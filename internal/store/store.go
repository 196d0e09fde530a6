// Package store persists the feature collection as a single GeoJSON
// document. A document that fails validation is handled according to a
// CorruptPolicy instead of being partially trusted.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/natefinch/atomic"
	"github.com/tidwall/gjson"
)

// CorruptPolicy says what Load does with a store that fails validation.
type CorruptPolicy string

const (
	// PolicyReset logs the problem and starts from an empty collection. The
	// corrupt file is overwritten at the next save.
	PolicyReset CorruptPolicy = "reset"
	// PolicyBackup renames the corrupt file aside, then resets.
	PolicyBackup CorruptPolicy = "backup"
	// PolicyFail returns the error and aborts the run.
	PolicyFail CorruptPolicy = "fail"
)

// ParseCorruptPolicy parses a policy name, case-insensitively.
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch p := CorruptPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyReset, PolicyBackup, PolicyFail:
		return p, nil
	case "":
		return PolicyReset, nil
	default:
		return "", fmt.Errorf("unknown corrupt store policy %q", s)
	}
}

// Store loads and saves a FeatureCollection at a fixed path.
type Store struct {
	path   string
	policy CorruptPolicy
	logger *slog.Logger
}

// New returns a Store for path.
func New(path string, policy CorruptPolicy, logger *slog.Logger) *Store {
	if policy == "" {
		policy = PolicyReset
	}
	return &Store{path: path, policy: policy, logger: logger}
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted collection. A missing file yields an empty
// collection. A corrupt file is handled per the store's policy.
func (s *Store) Load(_ context.Context) (domain.FeatureCollection, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewFeatureCollection(), nil
	}
	if err != nil {
		return domain.FeatureCollection{}, domain.NewError(domain.FileAccess, s.path, err)
	}

	c, err := Decode(data)
	if err == nil {
		return c, nil
	}
	corrupt := domain.NewError(domain.CorruptStore, s.path, err)

	switch s.policy {
	case PolicyFail:
		return domain.FeatureCollection{}, corrupt
	case PolicyBackup:
		backup := s.path + ".corrupt-" + domain.Timestamp(domain.Now())
		if rerr := os.Rename(s.path, backup); rerr != nil {
			return domain.FeatureCollection{}, domain.NewError(domain.FileAccess, s.path,
				fmt.Errorf("back up corrupt store: %w", rerr))
		}
		s.logger.Error("feature store is corrupt, moved aside and starting empty",
			"path", s.path,
			"backup", backup,
			"error", corrupt,
		)
	default:
		s.logger.Error("feature store is corrupt, starting empty; existing features will be overwritten",
			"path", s.path,
			"error", corrupt,
		)
	}
	return domain.NewFeatureCollection(), nil
}

// Save writes c atomically: readers see either the previous document or the
// new one, never a partial write.
func (s *Store) Save(_ context.Context, c domain.FeatureCollection) error {
	if c.Type == "" {
		c.Type = "FeatureCollection"
	}
	if c.Features == nil {
		c.Features = []domain.Feature{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode feature collection: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.NewError(domain.FileAccess, s.path, err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return domain.NewError(domain.FileAccess, s.path, err)
	}
	return nil
}

// Decode validates data as a feature collection and parses it. Unknown
// properties are dropped.
func Decode(data []byte) (domain.FeatureCollection, error) {
	if !gjson.ValidBytes(data) {
		return domain.FeatureCollection{}, errors.New("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if t := doc.Get("type").String(); t != "FeatureCollection" {
		return domain.FeatureCollection{}, fmt.Errorf("type is %q, want FeatureCollection", t)
	}
	features := doc.Get("features")
	if !features.IsArray() {
		return domain.FeatureCollection{}, errors.New("features is not an array")
	}
	for i, f := range features.Array() {
		if err := checkFeature(f); err != nil {
			return domain.FeatureCollection{}, fmt.Errorf("feature %d: %w", i, err)
		}
	}

	c := domain.NewFeatureCollection()
	if err := json.Unmarshal(data, &c); err != nil {
		return domain.FeatureCollection{}, fmt.Errorf("decode features: %w", err)
	}
	if c.Features == nil {
		c.Features = []domain.Feature{}
	}
	return c, nil
}

// checkFeature verifies the shape a stored feature must have.
func checkFeature(f gjson.Result) error {
	if t := f.Get("type").String(); t != "Feature" {
		return fmt.Errorf("type is %q, want Feature", t)
	}
	if t := f.Get("geometry.type").String(); t != "Point" {
		return fmt.Errorf("geometry type is %q, want Point", t)
	}
	coords := f.Get("geometry.coordinates").Array()
	if len(coords) < 2 || coords[0].Type != gjson.Number || coords[1].Type != gjson.Number {
		return errors.New("coordinates are not a numeric pair")
	}
	if !domain.NewGpsCoordinate(coords[1].Float(), coords[0].Float()).Valid() {
		return fmt.Errorf("coordinates [%v, %v] out of range", coords[0].Float(), coords[1].Float())
	}
	name := f.Get("properties.name")
	if name.Type != gjson.String || name.String() == "" {
		return errors.New("properties.name missing")
	}
	return nil
}
