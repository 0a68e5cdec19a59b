package domain

import (
	"encoding/json"
	"time"
)

// DefaultSampleRate is the OpenEEW sensor default in samples per second.
const DefaultSampleRate = 31.25

// AccelerometerRecord is one triaxial waveform chunk from an OpenEEW device.
// Axis arrays are accelerations in gals (cm/s²) and are equal or near-equal
// in length; consumers use the minimum of the three.
type AccelerometerRecord struct {
	DeviceID   string    `json:"device_id"`
	Timestamp  float64   `json:"cloud_t"` // fractional seconds since epoch
	X          []float64 `json:"x"`
	Y          []float64 `json:"y"`
	Z          []float64 `json:"z"`
	SampleRate float64   `json:"sr"`
}

// UnmarshalJSON applies the OpenEEW default sample rate when "sr" is absent.
func (r *AccelerometerRecord) UnmarshalJSON(data []byte) error {
	type plain AccelerometerRecord
	aux := plain{SampleRate: DefaultSampleRate}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = AccelerometerRecord(aux)
	return nil
}

// SampleCount returns the usable sample count, the minimum across the axes.
func (r *AccelerometerRecord) SampleCount() int {
	n := len(r.X)
	if len(r.Y) < n {
		n = len(r.Y)
	}
	if len(r.Z) < n {
		n = len(r.Z)
	}
	return n
}

// StartTime returns the record start as a time.Time.
func (r *AccelerometerRecord) StartTime() time.Time {
	sec := int64(r.Timestamp)
	nsec := int64((r.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
