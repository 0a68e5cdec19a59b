// Package eew implements earthquake early-warning onset detection over raw
// accelerometer waveforms using the STA/LTA (short-term average over
// long-term average) ratio, the standard statistic for P-wave picking.
package eew

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/couchcryptid/quake-monitor/internal/domain"
)

// ltaEpsilon is the baseline below which the LTA is treated as silence and
// the sample is skipped: no meaningful trigger can be evaluated against an
// effectively zero denominator.
const ltaEpsilon = 0.001

// Detection is one trigger onset found in a waveform.
type Detection struct {
	ID        string  `json:"id"`
	DeviceID  string  `json:"device_id"`
	Timestamp float64 `json:"timestamp"` // fractional seconds since epoch
	// PGA is the peak ground acceleration within the triggering short
	// window, in gals (cm/s²).
	PGA   float64 `json:"pga"`
	Ratio float64 `json:"sta_lta_ratio"`
	// EstimatedMagnitude is a coarse single-variable estimate; nil when the
	// PGA is too small to estimate meaningfully.
	EstimatedMagnitude *float64   `json:"estimated_magnitude,omitempty"`
	AlertLevel         AlertLevel `json:"alert_level"`
}

// triggerState is the detector's hysteresis state. Exactly two states:
// one Detection is emitted on each idle→triggered edge, none on the way back.
type triggerState int

const (
	stateIdle triggerState = iota
	stateTriggered
)

// Detector runs STA/LTA onset detection over a waveform window. A Detector
// holds configuration only; Detect carries all per-call state, so a single
// Detector is safe to share across goroutines.
type Detector struct {
	staSamples         int
	ltaSamples         int
	triggerThreshold   float64
	detriggerThreshold float64
}

// NewDetector creates a detector with explicit window lengths in samples and
// explicit trigger/detrigger thresholds. The detrigger threshold sits below
// the trigger threshold to form a hysteresis band, preventing chatter when
// the ratio hovers near a single boundary. The short window must hold at
// least one sample and fit inside the long window; Detect indexes both
// windows backward from the same sample and assumes this ordering.
func NewDetector(staSamples, ltaSamples int, trigger, detrigger float64) (*Detector, error) {
	if staSamples <= 0 {
		return nil, fmt.Errorf("short window must hold at least one sample, got %d", staSamples)
	}
	if staSamples > ltaSamples {
		return nil, fmt.Errorf("short window (%d samples) must not exceed long window (%d samples)", staSamples, ltaSamples)
	}
	return &Detector{
		staSamples:         staSamples,
		ltaSamples:         ltaSamples,
		triggerThreshold:   trigger,
		detriggerThreshold: detrigger,
	}, nil
}

// NewDetectorFromWindows derives sample counts from window durations in
// seconds at the given sample rate. The detrigger threshold is the
// conventional half of the trigger threshold.
func NewDetectorFromWindows(staSeconds, ltaSeconds, sampleRate, threshold float64) (*Detector, error) {
	return NewDetector(
		int(staSeconds*sampleRate),
		int(ltaSeconds*sampleRate),
		threshold,
		threshold/2.0,
	)
}

// DefaultDetector returns a detector tuned for the OpenEEW default sample
// rate: a ~0.3s short window, ~3s long window, and a 3.0/1.5 threshold pair.
func DefaultDetector() *Detector {
	return &Detector{
		staSamples:         10,
		ltaSamples:         100,
		triggerThreshold:   3.0,
		detriggerThreshold: 1.5,
	}
}

// PGA returns the instantaneous vector magnitude of the three axes.
func PGA(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Detect scans the record for trigger onsets and returns one Detection per
// rising edge of the STA/LTA ratio. A record shorter than the long window
// yields no detections: there is not enough history for a baseline, which is
// not an error.
func (d *Detector) Detect(rec *domain.AccelerometerRecord) []Detection {
	n := rec.SampleCount()
	if n < d.ltaSamples {
		return nil
	}

	pga := make([]float64, n)
	for i := 0; i < n; i++ {
		pga[i] = PGA(rec.X[i], rec.Y[i], rec.Z[i])
	}

	var detections []Detection
	state := stateIdle

	for i := d.ltaSamples; i < n; i++ {
		sta := mean(pga[i-d.staSamples : i])
		lta := mean(pga[i-d.ltaSamples : i])

		if lta < ltaEpsilon {
			continue
		}
		ratio := sta / lta

		switch state {
		case stateIdle:
			if ratio > d.triggerThreshold {
				state = stateTriggered
				detections = append(detections, d.newDetection(rec, pga, i, ratio))
			}
		case stateTriggered:
			if ratio < d.detriggerThreshold {
				state = stateIdle
			}
		}
	}

	return detections
}

// newDetection builds the Detection for a trigger at sample index i. The
// reported PGA is the peak of the short window preceding i, not the
// instantaneous sample.
func (d *Detector) newDetection(rec *domain.AccelerometerRecord, pga []float64, i int, ratio float64) Detection {
	peak := 0.0
	for _, v := range pga[i-d.staSamples : i] {
		if v > peak {
			peak = v
		}
	}

	return Detection{
		ID:                 uuid.NewString(),
		DeviceID:           rec.DeviceID,
		Timestamp:          rec.Timestamp + float64(i)/rec.SampleRate,
		PGA:                peak,
		Ratio:              ratio,
		EstimatedMagnitude: EstimateMagnitude(peak),
		AlertLevel:         ClassifyPGA(peak),
	}
}

func mean(samples []float64) float64 {
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}
