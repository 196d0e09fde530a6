package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/geotag/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/geotag/internal/adapter/kafka"
	"github.com/couchcryptid/geotag/internal/adapter/mapquest"
	"github.com/couchcryptid/geotag/internal/adapter/mp4meta"
	"github.com/couchcryptid/geotag/internal/config"
	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/couchcryptid/geotag/internal/media"
	"github.com/couchcryptid/geotag/internal/observability"
	"github.com/couchcryptid/geotag/internal/pipeline"
	"github.com/couchcryptid/geotag/internal/store"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(execute(ctx, newRootCmd(), os.Stderr))
}

// execute runs cmd and reports a returned error on stderr, since the
// commands silence cobra's own error output.
func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "geotag <input-dir> [output]",
		Short: "Index geotagged photos and videos into a GeoJSON file",
		Long: `geotag walks a directory of photos and videos, reads the position each was
taken at, and appends one GeoJSON point per new file to a feature collection.
Running it again over the same library only adds files not seen before.

The output defaults to ./output.geojson. A directory output gets
output.geojson inside it; an output ending in .geojson is used as is.

Reverse geocoding is enabled by setting MAPQUEST_KEY.`,
		Example: `  geotag ~/Pictures
  geotag ~/Pictures ~/maps
  geotag ~/Pictures ~/maps/trips.geojson
  geotag validate ~/maps/trips.geojson`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runIndex,
	}
	root.AddCommand(newValidateCmd())
	return root
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	output := "."
	if len(args) == 2 {
		output = args[1]
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var geocoder domain.ReverseGeocoder
	if cfg.MapQuestEnabled {
		client := mapquest.NewClient(cfg.MapQuestKey, cfg.MapQuestBaseURL, cfg.MapQuestTimeout, metrics, logger)
		cached, err := mapquest.NewCachedGeocoder(client, cfg.GeocodeCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocode cache", "error", err)
			return err
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapquest geocoding enabled", "cache_size", cfg.GeocodeCacheSize, "timeout", cfg.MapQuestTimeout)
	} else {
		logger.Info("mapquest geocoding disabled, places will be unknown")
	}

	stages := pipeline.Stages{
		Classifier:     media.NewClassifier(cfg.VideoExtension),
		Photos:         media.ExifExtractor{},
		Videos:         media.NewVideoExtractor(mp4meta.New(), logger),
		Geocoder:       geocoder,
		Store:          store.New(config.OutputPath(output), cfg.CorruptPolicy, logger),
		PublishTimeout: cfg.ShutdownTimeout,
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		stages.Publisher = writer
		logger.Info("kafka publication enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(stages, logger, metrics)

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, metrics.Gatherer(), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	_, runErr := p.Run(cmd.Context(), args[0])
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	return runErr
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <store>",
		Short: "Check a GeoJSON store for shape errors and duplicate features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := store.Validate(args[0])
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				return fmt.Errorf("%s: %d problems, %d duplicates", report.Path, len(report.Problems), len(report.Duplicates))
			}
			return nil
		},
	}
}

func printReport(w io.Writer, r store.ValidationReport) {
	fmt.Fprintf(w, "%s: %d features, %d with unknown place\n", r.Path, r.Features, r.UnknownPlaces)
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  problem: %s\n", p)
	}
	for _, d := range r.Duplicates {
		fmt.Fprintf(w, "  duplicate: %s at %s (features %d and %d)\n", d.Name, d.DateTime, d.First, d.Second)
	}
	for _, name := range r.NameCollisions {
		fmt.Fprintf(w, "  name reused with different DateTime: %s\n", name)
	}
	if r.OK() {
		fmt.Fprintln(w, "OK")
	}
}
