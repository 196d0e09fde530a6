package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func featureNamed(name, dt string) Feature {
	return Feature{Type: "Feature", Properties: Properties{Name: name, DateTime: dt}}
}

func TestDedupIndex(t *testing.T) {
	c := NewFeatureCollection()
	c.Append(featureNamed("IMG_1.JPG", "2020:01:01 10:00:00"))
	c.Append(featureNamed("IMG_2.JPG", NoneValue))

	idx := NewDedupIndex(c)

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.IsDuplicate("IMG_1.JPG", "2020:01:01 10:00:00"))
	assert.True(t, idx.IsDuplicate("IMG_2.JPG", NoneValue))
	assert.False(t, idx.IsDuplicate("IMG_1.JPG", "2021:01:01 10:00:00"))
	assert.False(t, idx.IsDuplicate("IMG_3.JPG", NoneValue))

	t.Run("last write wins", func(t *testing.T) {
		idx.Record(featureNamed("IMG_1.JPG", "2021:01:01 10:00:00"))

		assert.Equal(t, 2, idx.Len())
		assert.True(t, idx.IsDuplicate("IMG_1.JPG", "2021:01:01 10:00:00"))
		assert.False(t, idx.IsDuplicate("IMG_1.JPG", "2020:01:01 10:00:00"))
	})
}
