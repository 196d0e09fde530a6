//go:build mapquest

package mapquest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/geotag/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real MapQuest API and require a valid MAPQUEST_KEY env var.
// Run with: go test -tags=mapquest ./internal/adapter/mapquest/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("MAPQUEST_KEY")
	if key == "" {
		t.Fatal("MAPQUEST_KEY must be set to run smoke tests")
	}
	return NewClient(key, DefaultBaseURL, 10*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ReverseGeocode(context.Background(), 40.4461, -79.9822)
	require.NoError(t, err)

	assert.Equal(t, "US", result.Country)
	assert.Equal(t, "Pittsburgh", result.City)
	assert.NotEmpty(t, result.PostalCode)
}

func TestSmoke_ReverseGeocode_Ocean(t *testing.T) {
	c := smokeClient(t)

	// Mid-Atlantic; MapQuest still answers with a (sparse) location.
	result, err := c.ReverseGeocode(context.Background(), 30.0, -40.0)
	if err != nil {
		t.Logf("ocean lookup returned error: %v", err)
		return
	}
	t.Logf("ocean lookup: %+v", result)
}
