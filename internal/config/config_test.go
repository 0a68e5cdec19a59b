package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "all_hour", cfg.USGSFeed)
	assert.Equal(t, 10*time.Second, cfg.USGSTimeout)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 10_000, cfg.DedupCapacity)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "quake-events", cfg.KafkaEventsTopic)
	assert.Equal(t, "quake-detections", cfg.KafkaDetectionsTopic)
	assert.Equal(t, "grillo-openeew", cfg.OpenEEWBucket)
	assert.Equal(t, "us-east-1", cfg.OpenEEWRegion)

	assert.Nil(t, cfg.MinMagnitude)
	assert.Nil(t, cfg.MaxDepth)
	assert.Nil(t, cfg.BBox)
	assert.Nil(t, cfg.Radius)
	assert.False(t, cfg.SignificantOnly)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("USGS_FEED", "2.5_day")
	t.Setenv("POLL_INTERVAL", "90s")
	t.Setenv("DEDUP_CAPACITY", "500")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_EVENTS_TOPIC", "custom-events")
	t.Setenv("FILTER_MIN_MAGNITUDE", "4.5")
	t.Setenv("FILTER_MAX_DEPTH", "70")
	t.Setenv("FILTER_BBOX", "32.5,-124.5,42.0,-114.0")
	t.Setenv("FILTER_RADIUS", "37.77,-122.41,500")
	t.Setenv("FILTER_SIGNIFICANT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2.5_day", cfg.USGSFeed)
	assert.Equal(t, 90*time.Second, cfg.PollInterval)
	assert.Equal(t, 500, cfg.DedupCapacity)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-events", cfg.KafkaEventsTopic)

	require.NotNil(t, cfg.MinMagnitude)
	assert.InDelta(t, 4.5, *cfg.MinMagnitude, 1e-9)
	require.NotNil(t, cfg.MaxDepth)
	assert.InDelta(t, 70.0, *cfg.MaxDepth, 1e-9)
	require.NotNil(t, cfg.BBox)
	assert.InDelta(t, 32.5, cfg.BBox.MinLat, 1e-9)
	require.NotNil(t, cfg.Radius)
	assert.InDelta(t, 500.0, cfg.Radius.RadiusKm, 1e-9)
	assert.True(t, cfg.SignificantOnly)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad poll interval", "POLL_INTERVAL", "fast", "POLL_INTERVAL"},
		{"negative poll interval", "POLL_INTERVAL", "-10s", "POLL_INTERVAL"},
		{"bad dedup capacity", "DEDUP_CAPACITY", "0", "DEDUP_CAPACITY"},
		{"bad min magnitude", "FILTER_MIN_MAGNITUDE", "large", "FILTER_MIN_MAGNITUDE"},
		{"bad bbox", "FILTER_BBOX", "1,2,3", "FILTER_BBOX"},
		{"bad radius", "FILTER_RADIUS", "37.77,-122.41,-5", "FILTER_RADIUS"},
		{"empty brokers", "KAFKA_BROKERS", ",", "KAFKA_BROKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEventFilter(t *testing.T) {
	t.Setenv("FILTER_MIN_MAGNITUDE", "4.0")
	t.Setenv("FILTER_SIGNIFICANT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	f := cfg.EventFilter()
	require.NotNil(t, f.MinMagnitude)
	assert.InDelta(t, 4.0, *f.MinMagnitude, 1e-9)
	assert.True(t, f.SignificantOnly)
	assert.Nil(t, f.BBox)
}
