package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/quake-monitor/internal/filter"
	"github.com/couchcryptid/quake-monitor/internal/geo"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	USGSFeed    string
	USGSTimeout time.Duration

	PollInterval    time.Duration
	DedupCapacity   int
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers         []string
	KafkaEventsTopic     string
	KafkaDetectionsTopic string

	// Filter criteria; nil pointers mean the criterion is unset.
	MinMagnitude    *float64
	MaxDepth        *float64
	BBox            *geo.BBox
	Radius          *geo.RadiusFilter
	SignificantOnly bool

	// OpenEEW public dataset access for the detect tooling.
	OpenEEWBucket string
	OpenEEWRegion string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is picked up first for
// development. Malformed values are reported here, never silently defaulted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	usgsTimeout, err := parseDuration("USGS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	dedupCapacity, err := parsePositiveInt("DEDUP_CAPACITY", 10_000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		USGSFeed:    envOrDefault("USGS_FEED", "all_hour"),
		USGSTimeout: usgsTimeout,

		PollInterval:    pollInterval,
		DedupCapacity:   dedupCapacity,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:         splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEventsTopic:     envOrDefault("KAFKA_EVENTS_TOPIC", "quake-events"),
		KafkaDetectionsTopic: envOrDefault("KAFKA_DETECTIONS_TOPIC", "quake-detections"),

		SignificantOnly: os.Getenv("FILTER_SIGNIFICANT") == "true",

		OpenEEWBucket: envOrDefault("OPENEEW_BUCKET", "grillo-openeew"),
		OpenEEWRegion: envOrDefault("OPENEEW_REGION", "us-east-1"),
	}

	if cfg.MinMagnitude, err = parseOptionalFloat("FILTER_MIN_MAGNITUDE"); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = parseOptionalFloat("FILTER_MAX_DEPTH"); err != nil {
		return nil, err
	}

	if s := os.Getenv("FILTER_BBOX"); s != "" {
		bbox, err := geo.ParseBBox(s)
		if err != nil {
			return nil, fmt.Errorf("invalid FILTER_BBOX: %w", err)
		}
		cfg.BBox = &bbox
	}
	if s := os.Getenv("FILTER_RADIUS"); s != "" {
		radius, err := geo.ParseRadius(s)
		if err != nil {
			return nil, fmt.Errorf("invalid FILTER_RADIUS: %w", err)
		}
		cfg.Radius = &radius
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaEventsTopic == "" {
		return nil, errors.New("KAFKA_EVENTS_TOPIC is required")
	}

	return cfg, nil
}

// EventFilter assembles the configured filter criteria.
func (c *Config) EventFilter() *filter.EventFilter {
	return &filter.EventFilter{
		MinMagnitude:    c.MinMagnitude,
		MaxDepth:        c.MaxDepth,
		BBox:            c.BBox,
		Radius:          c.Radius,
		SignificantOnly: c.SignificantOnly,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseOptionalFloat(key string) (*float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, s)
	}
	return &v, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
