package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/couchcryptid/geotag/internal/media"
	"github.com/couchcryptid/geotag/internal/observability"
)

// Classifier decides what kind of media a file is.
type Classifier interface {
	ClassifyFile(path string) (domain.MediaKind, error)
}

// PhotoExtractor reads position and capture details from a photo.
type PhotoExtractor interface {
	Extract(path string) (domain.GpsCoordinate, domain.CaptureMetadata, error)
}

// VideoExtractor reads position and capture details from a video.
type VideoExtractor interface {
	Extract(ctx context.Context, path string) (domain.GpsCoordinate, domain.CaptureMetadata, error)
}

// Store loads and saves the feature collection.
type Store interface {
	Load(ctx context.Context) (domain.FeatureCollection, error)
	Save(ctx context.Context, c domain.FeatureCollection) error
}

// Publisher receives the features appended during a run.
type Publisher interface {
	Publish(ctx context.Context, features []domain.Feature) error
}

// Stages are the collaborators a Pipeline drives. Geocoder and Publisher may
// be nil.
type Stages struct {
	Classifier Classifier
	Photos     PhotoExtractor
	Videos     VideoExtractor
	Geocoder   domain.ReverseGeocoder
	Store      Store
	Publisher  Publisher

	// PublishTimeout bounds the final publish call. Zero means 10s.
	PublishTimeout time.Duration
}

// Pipeline walks a directory and appends a feature for every new geotagged
// file, one file at a time.
type Pipeline struct {
	stages  Stages
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool

	mu     sync.Mutex
	status Summary
}

// New creates a Pipeline with the given stages and observability.
func New(stages Stages, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if stages.PublishTimeout <= 0 {
		stages.PublishTimeout = 10 * time.Second
	}
	return &Pipeline{stages: stages, logger: logger, metrics: metrics}
}

// CheckReadiness returns nil once the store has been loaded and the input
// walked, or an error describing why the run is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded the store yet")
	}
	return nil
}

// Status returns a snapshot of the counters of the current or last run.
func (p *Pipeline) Status() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Pipeline) setStatus(s Summary) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// Run indexes every file under root. Per-file problems are counted and
// logged, never returned. Cancelling ctx stops the run before the next file;
// the collection gathered so far is still saved. Only a store that cannot be
// loaded or saved, or an unreadable root, makes Run return an error.
func (p *Pipeline) Run(ctx context.Context, root string) (Summary, error) {
	start := domain.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var summary Summary
	collection, err := p.stages.Store.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load store: %w", err)
	}
	index := domain.NewDedupIndex(collection)
	p.metrics.StoreFeatures.Set(float64(collection.Len()))

	files, err := media.CollectFiles(root, p.logger)
	if err != nil {
		return summary, err
	}
	p.logger.Info("run started",
		"root", root,
		"files", len(files),
		"stored_features", collection.Len(),
	)
	summary.Pending = len(files)
	p.setStatus(summary)
	p.ready.Store(true)

	prog := newProgress(len(files))
	var appended []domain.Feature

	for i, path := range files {
		if ctx.Err() != nil {
			summary.Cancelled = true
			p.logger.Warn("run cancelled, saving collected features",
				"reason", ctx.Err(),
				"remaining", len(files)-i,
			)
			break
		}

		// A file in progress runs to completion even if ctx is cancelled.
		outcome, feature := p.processFile(context.WithoutCancel(ctx), path, index)
		summary = summary.Record(outcome)
		p.metrics.FilesProcessed.WithLabelValues(outcome.String()).Inc()
		if feature != nil {
			collection.Append(*feature)
			index.Record(*feature)
			appended = append(appended, *feature)
			p.metrics.FeaturesAppended.Inc()
		}
		p.setStatus(summary)

		for _, pct := range prog.advance(i + 1) {
			p.logger.Info("progress", "percent", pct, "done", i+1, "total", len(files))
		}
	}

	summary.Duration = domain.Since(start)
	if err := p.stages.Store.Save(context.WithoutCancel(ctx), collection); err != nil {
		p.setStatus(summary)
		return summary, fmt.Errorf("save store: %w", err)
	}
	p.metrics.StoreFeatures.Set(float64(collection.Len()))
	p.metrics.RunDuration.Observe(summary.Duration.Seconds())

	p.publish(ctx, appended)

	p.setStatus(summary)
	p.logger.Info("finished", "summary", summary)
	return summary, nil
}

// processFile runs one file through classification, extraction, dedup,
// geocoding and feature building. A panic in any stage counts as a failure.
func (p *Pipeline) processFile(ctx context.Context, path string, index *domain.DedupIndex) (outcome Outcome, feature *domain.Feature) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing file", "path", path, "panic", r)
			outcome, feature = OutcomeFailed, nil
		}
	}()

	file, err := domain.NewMediaFile(path)
	if err != nil {
		p.logger.Warn("skipping file", "path", path, "error", err)
		return OutcomeFailed, nil
	}

	kind, err := p.stages.Classifier.ClassifyFile(file.Path)
	if err != nil {
		p.logger.Warn("classification failed", "path", file.Path, "error", err)
		return OutcomeFailed, nil
	}

	var (
		gps            domain.GpsCoordinate
		meta           domain.CaptureMetadata
		withGPS, noGPS Outcome
	)
	switch kind {
	case domain.Photo:
		gps, meta, err = p.stages.Photos.Extract(file.Path)
		withGPS, noGPS = OutcomePhotoWithGPS, OutcomePhotoWithoutGPS
	case domain.Video:
		gps, meta, err = p.stages.Videos.Extract(ctx, file.Path)
		withGPS, noGPS = OutcomeVideoWithGPS, OutcomeVideoWithoutGPS
	default:
		p.logger.Debug("not media", "path", file.Path)
		return OutcomeNotMedia, nil
	}
	if err != nil {
		p.logger.Warn("metadata extraction failed",
			"path", file.Path,
			"kind", kind.String(),
			"error_kind", domain.KindOf(err).String(),
			"error", err,
		)
		return OutcomeFailed, nil
	}
	if !gps.Valid() {
		return noGPS, nil
	}

	// Duplicates are detected before any geocoding call.
	if index.IsDuplicate(file.Name, meta.DateTime()) {
		p.logger.Debug("already indexed", "path", file.Path, "date_time", meta.DateTime())
		return OutcomeDuplicate, nil
	}

	place := domain.ResolvePlace(ctx, p.stages.Geocoder, gps, p.logger)
	f, err := domain.BuildFeature(file, gps, meta, place)
	if err != nil {
		p.logger.Warn("building feature failed", "path", file.Path, "error", err)
		return OutcomeFailed, nil
	}
	return withGPS, &f
}

// publish hands the run's new features to the publisher. Failures are
// logged; the store is already saved.
func (p *Pipeline) publish(ctx context.Context, features []domain.Feature) {
	if p.stages.Publisher == nil || len(features) == 0 {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.stages.PublishTimeout)
	defer cancel()
	if err := p.stages.Publisher.Publish(pubCtx, features); err != nil {
		p.logger.Error("publishing new features failed", "count", len(features), "error", err)
	}
}
