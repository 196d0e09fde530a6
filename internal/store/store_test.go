package store

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleFeature(t *testing.T, name, dt string, lat, lon float64) domain.Feature {
	t.Helper()
	f, err := domain.BuildFeature(
		domain.MediaFile{Path: "/photos/" + name, Name: name},
		domain.NewGpsCoordinate(lat, lon),
		domain.CaptureMetadata{CapturedAt: dt, Year: dt[:4], Device: "iPhone 6"},
		domain.GeocodeResult{Country: "US", City: "Pittsburgh", Street: "Forbes Ave", PostalCode: "15213"},
	)
	require.NoError(t, err)
	return f
}

func TestStore_LoadMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "output.geojson"), PolicyReset, discardLogger())

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NewFeatureCollection(), c)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "output.geojson")
	s := New(path, PolicyReset, discardLogger())

	c := domain.NewFeatureCollection()
	c.Append(sampleFeature(t, "IMG_1.JPG", "2016:01:02 03:04:05", 40.446, -79.982))
	c.Append(sampleFeature(t, "IMG_2.JPG", "2016:01:02 03:05:00", -33.865, 151.209))
	require.NoError(t, s.Save(context.Background(), c))

	got, err := s.Load(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(c.Features[0].Properties, got.Features[0].Properties); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 2, got.Len())
	p, ok := got.Features[1].Point()
	require.True(t, ok)
	assert.InDelta(t, 151.209, p[0], 1e-9)
	assert.InDelta(t, -33.865, p[1], 1e-9)
}

func TestStore_SaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.geojson")
	require.NoError(t, New(path, PolicyReset, discardLogger()).Save(context.Background(), domain.FeatureCollection{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestStore_LoadCorrupt(t *testing.T) {
	corrupt := []byte(`{"type":"FeatureCollection","features":[{"type":"Feat`)

	t.Run("reset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "output.geojson")
		require.NoError(t, os.WriteFile(path, corrupt, 0o644))

		var logs bytes.Buffer
		s := New(path, PolicyReset, slog.New(slog.NewTextHandler(&logs, nil)))

		c, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Zero(t, c.Len())
		assert.Contains(t, logs.String(), "level=ERROR")
		assert.Contains(t, logs.String(), "corrupt")
	})

	t.Run("backup", func(t *testing.T) {
		domain.SetClock(clockwork.NewFakeClockAt(time.Date(2020, 3, 4, 5, 6, 7, 0, time.Local)))
		defer domain.SetClock(nil)

		dir := t.TempDir()
		path := filepath.Join(dir, "output.geojson")
		require.NoError(t, os.WriteFile(path, corrupt, 0o644))

		c, err := New(path, PolicyBackup, discardLogger()).Load(context.Background())
		require.NoError(t, err)
		assert.Zero(t, c.Len())

		backup, err := os.ReadFile(path + ".corrupt-20200304050607")
		require.NoError(t, err)
		assert.Equal(t, corrupt, backup)
		assert.NoFileExists(t, path)
	})

	t.Run("fail", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "output.geojson")
		require.NoError(t, os.WriteFile(path, corrupt, 0o644))

		_, err := New(path, PolicyFail, discardLogger()).Load(context.Background())
		require.Error(t, err)
		assert.Equal(t, domain.CorruptStore, domain.KindOf(err))
		assert.FileExists(t, path)
	})
}

func TestDecode(t *testing.T) {
	valid := func(coords, name string) string {
		return `{"type":"FeatureCollection","features":[{"type":"Feature",
			"geometry":{"type":"Point","coordinates":` + coords + `},
			"properties":{"name":` + name + `,"DateTime":"none","extra":"dropped"}}]}`
	}

	t.Run("valid", func(t *testing.T) {
		c, err := Decode([]byte(valid(`[-79.98, 40.44]`, `"a.jpg"`)))
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		assert.Equal(t, "a.jpg", c.Features[0].Properties.Name)
	})

	t.Run("empty features", func(t *testing.T) {
		c, err := Decode([]byte(`{"type":"FeatureCollection","features":[]}`))
		require.NoError(t, err)
		assert.NotNil(t, c.Features)
	})

	bad := map[string]string{
		"empty file":          ``,
		"not json":            `hello`,
		"wrong type":          `{"type":"Feature","features":[]}`,
		"features missing":    `{"type":"FeatureCollection"}`,
		"features not array":  `{"type":"FeatureCollection","features":{}}`,
		"out of range":        valid(`[-79.98, 91]`, `"a.jpg"`),
		"coordinates strings": valid(`["-79.98","40.44"]`, `"a.jpg"`),
		"short coordinates":   valid(`[1]`, `"a.jpg"`),
		"missing name":        valid(`[1, 2]`, `""`),
		"numeric name":        valid(`[1, 2]`, `7`),
		"line geometry": `{"type":"FeatureCollection","features":[{"type":"Feature",
			"geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]},"properties":{"name":"a"}}]}`,
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseCorruptPolicy(t *testing.T) {
	for in, want := range map[string]CorruptPolicy{
		"":       PolicyReset,
		"reset":  PolicyReset,
		"BACKUP": PolicyBackup,
		" fail ": PolicyFail,
	} {
		got, err := ParseCorruptPolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseCorruptPolicy("ignore")
	require.Error(t, err)
}
