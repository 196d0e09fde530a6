package media

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// DefaultVideoExtension is the extension treated as video unless configured
// otherwise.
const DefaultVideoExtension = ".mov"

// Classifier decides whether a file is a photo, a video, or neither.
type Classifier struct {
	videoExt string
}

// NewClassifier returns a Classifier that treats files ending in videoExt
// (case-insensitive) as video. An empty videoExt uses DefaultVideoExtension.
func NewClassifier(videoExt string) *Classifier {
	if videoExt == "" {
		videoExt = DefaultVideoExtension
	}
	if !strings.HasPrefix(videoExt, ".") {
		videoExt = "." + videoExt
	}
	return &Classifier{videoExt: strings.ToLower(videoExt)}
}

// ClassifyFile opens path and classifies it.
func (c *Classifier) ClassifyFile(path string) (domain.MediaKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Unsupported, domain.NewError(domain.FileAccess, path, err)
	}
	defer f.Close()

	kind, err := c.Classify(f, path)
	if err != nil {
		return domain.Unsupported, domain.NewError(domain.FileAccess, path, err)
	}
	return kind, nil
}

// Classify inspects name and, for non-video names, sniffs r for a non-empty
// EXIF tag set. r is left positioned at offset 0.
func (c *Classifier) Classify(r io.ReadSeeker, name string) (domain.MediaKind, error) {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if strings.HasPrefix(base, ".") {
		return domain.Unsupported, nil
	}
	if strings.HasSuffix(strings.ToLower(base), c.videoExt) {
		return domain.Video, nil
	}

	n := countExifTags(r)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return domain.Unsupported, fmt.Errorf("rewind after sniff: %w", err)
	}
	if n > 0 {
		return domain.Photo, nil
	}
	return domain.Unsupported, nil
}

// countExifTags returns the number of EXIF tags in r, or 0 if r carries no
// decodable tag set.
func countExifTags(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil && exif.IsCriticalError(err) {
		return 0
	}
	var w tagCounter
	if err := x.Walk(&w); err != nil {
		return 0
	}
	return int(w)
}

type tagCounter int

func (c *tagCounter) Walk(_ exif.FieldName, _ *tiff.Tag) error {
	*c++
	return nil
}
