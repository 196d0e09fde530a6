package domain

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMediaFile(t *testing.T) {
	f, err := NewMediaFile(filepath.Join("trip", "CLIP.MOV"))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(f.Path))
	assert.Equal(t, "CLIP.MOV", f.Name)
	assert.Equal(t, ".mov", f.Ext)
}

func TestGpsCoordinate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		g := NewGpsCoordinate(40.446, -79.982)
		require.True(t, g.Valid())
		lat, lon := g.LatLon()
		assert.Equal(t, 40.446, lat)
		assert.Equal(t, -79.982, lon)
		assert.Equal(t, "40.446000,-79.982000", g.String())
	})

	for _, tc := range []struct {
		name     string
		lat, lon float64
	}{
		{"lat too large", 90.5, 0},
		{"lon too small", 0, -180.1},
		{"nan", math.NaN(), 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGpsCoordinate(tc.lat, tc.lon)
			assert.False(t, g.Valid())
			assert.Equal(t, "none", g.String())
		})
	}

	t.Run("half present", func(t *testing.T) {
		lat := 10.0
		assert.False(t, GpsCoordinate{Latitude: &lat}.Valid())
	})
}

func TestCaptureFromContainer(t *testing.T) {
	t.Run("with creation date", func(t *testing.T) {
		loc := time.FixedZone("EST", -5*3600)
		meta := CaptureFromContainer(ContainerMetadata{
			CreationDate: time.Date(2018, 12, 31, 22, 15, 0, 0, loc),
		})

		assert.Equal(t, "2019:01:01 03:15:00", meta.CapturedAt)
		assert.Equal(t, "2019", meta.Year)
		assert.Equal(t, VideoDevice, meta.Device)
	})

	t.Run("zero date", func(t *testing.T) {
		meta := CaptureFromContainer(ContainerMetadata{})

		assert.Empty(t, meta.Year)
		assert.Equal(t, NoneValue, meta.DateTime())
		assert.Equal(t, VideoDevice, meta.Device)
	})
}

func TestError(t *testing.T) {
	base := errors.New("permission denied")
	err := fmt.Errorf("classify: %w", NewError(FileAccess, "/x.jpg", base))

	assert.Equal(t, FileAccess, KindOf(err))
	assert.ErrorIs(t, err, base)
	assert.ErrorIs(t, err, &Error{Kind: FileAccess})
	assert.NotErrorIs(t, err, &Error{Kind: CorruptStore})
	assert.Contains(t, err.Error(), "file_access: /x.jpg: permission denied")
	assert.Equal(t, Unknown, KindOf(base))
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		fake := clockwork.NewFakeClockAt(fixedTime)

		SetClock(fake)
		defer SetClock(nil)

		assert.Equal(t, fixedTime, Now())
		assert.Equal(t, "20240101000000", Timestamp(Now()))

		fake.Advance(3 * time.Second)
		assert.Equal(t, 3*time.Second, Since(fixedTime))
	})

	t.Run("reset to real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		assert.True(t, time.Since(Now()) < time.Second)
	})
}
