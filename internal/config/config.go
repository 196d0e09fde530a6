package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/geotag/internal/adapter/mapquest"
	"github.com/couchcryptid/geotag/internal/store"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// OutputFileName is the store file created inside an output directory.
const OutputFileName = "output.geojson"

// Config holds all run settings, populated from environment variables.
type Config struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	MetricsTextfile string
	ShutdownTimeout time.Duration

	VideoExtension string
	CorruptPolicy  store.CorruptPolicy

	// MapQuest geocoding configuration.
	MapQuestKey      string
	MapQuestEnabled  bool
	MapQuestTimeout  time.Duration
	MapQuestBaseURL  string
	GeocodeCacheSize int

	// Optional publication of new features.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	mapquestTimeout, err := parseDuration("MAPQUEST_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	policy, err := store.ParseCorruptPolicy(os.Getenv("CORRUPT_STORE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid CORRUPT_STORE_POLICY: %w", err)
	}

	key := os.Getenv("MAPQUEST_KEY")
	enabled := key != ""
	if v := os.Getenv("MAPQUEST_ENABLED"); v != "" {
		enabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAPQUEST_ENABLED: %w", err)
		}
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		ShutdownTimeout: shutdownTimeout,
		VideoExtension:  strings.ToLower(sharedcfg.EnvOrDefault("VIDEO_EXTENSION", ".mov")),
		CorruptPolicy:   policy,

		MapQuestKey:      key,
		MapQuestEnabled:  enabled,
		MapQuestTimeout:  mapquestTimeout,
		MapQuestBaseURL:  sharedcfg.EnvOrDefault("MAPQUEST_BASE_URL", mapquest.DefaultBaseURL),
		GeocodeCacheSize: cacheSize,

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "geotag-features"),
	}

	if cfg.MapQuestEnabled && cfg.MapQuestKey == "" {
		return nil, errors.New("MAPQUEST_ENABLED is true but MAPQUEST_KEY is not set")
	}
	if !strings.HasPrefix(cfg.VideoExtension, ".") {
		cfg.VideoExtension = "." + cfg.VideoExtension
	}

	return cfg, nil
}

// KafkaEnabled reports whether new features should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// OutputPath resolves the CLI output argument to the store file path. An
// argument ending in .geojson names the file itself; anything else is a
// directory that will hold OutputFileName. An empty argument means the
// current directory.
func OutputPath(arg string) string {
	if arg == "" {
		arg = "."
	}
	if strings.EqualFold(filepath.Ext(arg), ".geojson") {
		return filepath.Clean(arg)
	}
	return filepath.Join(arg, OutputFileName)
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
