package pipeline

import (
	"log/slog"
	"time"
)

// Outcome is what happened to one visited file. Every file gets exactly one.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomePhotoWithGPS
	OutcomeVideoWithGPS
	OutcomePhotoWithoutGPS
	OutcomeVideoWithoutGPS
	OutcomeNotMedia
	OutcomeDuplicate
)

// String returns the metric label for o.
func (o Outcome) String() string {
	switch o {
	case OutcomePhotoWithGPS:
		return "photo_gps"
	case OutcomeVideoWithGPS:
		return "video_gps"
	case OutcomePhotoWithoutGPS:
		return "photo_no_gps"
	case OutcomeVideoWithoutGPS:
		return "video_no_gps"
	case OutcomeNotMedia:
		return "not_media"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Summary counts file outcomes for one run. Total always equals the sum of
// the outcome counters.
type Summary struct {
	Total            int           `json:"total"`
	PhotosWithGPS    int           `json:"photos_with_gps"`
	VideosWithGPS    int           `json:"videos_with_gps"`
	PhotosWithoutGPS int           `json:"photos_without_gps"`
	VideosWithoutGPS int           `json:"videos_without_gps"`
	NotMedia         int           `json:"not_media"`
	Failed           int           `json:"failed"`
	Duplicates       int           `json:"duplicates"`
	Pending          int           `json:"pending"`
	Cancelled        bool          `json:"cancelled"`
	Duration         time.Duration `json:"duration_ns"`
}

// Record returns s with one more file counted under o.
func (s Summary) Record(o Outcome) Summary {
	s.Total++
	switch o {
	case OutcomePhotoWithGPS:
		s.PhotosWithGPS++
	case OutcomeVideoWithGPS:
		s.VideosWithGPS++
	case OutcomePhotoWithoutGPS:
		s.PhotosWithoutGPS++
	case OutcomeVideoWithoutGPS:
		s.VideosWithoutGPS++
	case OutcomeNotMedia:
		s.NotMedia++
	case OutcomeDuplicate:
		s.Duplicates++
	default:
		s.Failed++
	}
	if s.Pending > 0 {
		s.Pending--
	}
	return s
}

// Processed is the number of features appended during the run.
func (s Summary) Processed() int { return s.PhotosWithGPS + s.VideosWithGPS }

// Photos counts photos that were extracted, with or without GPS.
func (s Summary) Photos() int { return s.PhotosWithGPS + s.PhotosWithoutGPS }

// Videos counts videos that were extracted, with or without GPS.
func (s Summary) Videos() int { return s.VideosWithGPS + s.VideosWithoutGPS }

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("processed", s.Processed()),
		slog.Int("photos", s.Photos()),
		slog.Int("videos", s.Videos()),
		slog.Int("photos_without_gps", s.PhotosWithoutGPS),
		slog.Int("videos_without_gps", s.VideosWithoutGPS),
		slog.Int("not_media", s.NotMedia),
		slog.Int("failed", s.Failed),
		slog.Int("duplicates", s.Duplicates),
		slog.Bool("cancelled", s.Cancelled),
		slog.Duration("duration", s.Duration),
	)
}
