package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccelerometerRecordDecode(t *testing.T) {
	t.Run("explicit sample rate", func(t *testing.T) {
		data := []byte(`{"device_id":"mx-001","cloud_t":1518822000.5,"x":[0.1,0.2],"y":[0.1,0.2],"z":[0.1,0.2],"sr":125}`)
		var rec AccelerometerRecord
		require.NoError(t, json.Unmarshal(data, &rec))

		assert.Equal(t, "mx-001", rec.DeviceID)
		assert.InDelta(t, 125.0, rec.SampleRate, 0.001)
		assert.Equal(t, 2, rec.SampleCount())
	})

	t.Run("default sample rate", func(t *testing.T) {
		data := []byte(`{"device_id":"mx-002","cloud_t":1518822000,"x":[0.1],"y":[0.1],"z":[0.1]}`)
		var rec AccelerometerRecord
		require.NoError(t, json.Unmarshal(data, &rec))

		assert.InDelta(t, DefaultSampleRate, rec.SampleRate, 0.001)
	})
}

func TestAccelerometerRecordSampleCount(t *testing.T) {
	rec := AccelerometerRecord{
		X: make([]float64, 100),
		Y: make([]float64, 99),
		Z: make([]float64, 101),
	}
	assert.Equal(t, 99, rec.SampleCount())
}

func TestAccelerometerRecordStartTime(t *testing.T) {
	rec := AccelerometerRecord{Timestamp: 1518822000.25}
	want := time.Unix(1518822000, 250000000).UTC()
	assert.WithinDuration(t, want, rec.StartTime(), time.Millisecond)
}
