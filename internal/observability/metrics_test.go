package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Isolated(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.FilesProcessed.WithLabelValues("not_media").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.FilesProcessed.WithLabelValues("not_media")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FilesProcessed.WithLabelValues("not_media")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.FilesProcessed.WithLabelValues("photo_gps").Add(3)
	m.FeaturesAppended.Inc()

	path := filepath.Join(t.TempDir(), "geotag.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `geotag_files_processed_total{outcome="photo_gps"} 3`)
	assert.Contains(t, string(data), "geotag_features_appended_total 1")
}
