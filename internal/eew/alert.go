package eew

import (
	"fmt"
	"math"
)

// AlertLevel is a six-tier severity classification of peak ground
// acceleration, in gals (cm/s²). Band boundaries are inclusive on the lower
// end.
type AlertLevel int

const (
	LevelNone     AlertLevel = iota // < 1 gal, not felt
	LevelWeak                       // 1-3 gals, may be felt
	LevelLight                      // 3-10 gals, light shaking
	LevelModerate                   // 10-50 gals, potential damage
	LevelStrong                     // 50-150 gals, likely damage
	LevelSevere                     // >= 150 gals, major damage
)

// ClassifyPGA maps a PGA value in gals to its alert level.
func ClassifyPGA(pga float64) AlertLevel {
	switch {
	case pga >= 150.0:
		return LevelSevere
	case pga >= 50.0:
		return LevelStrong
	case pga >= 10.0:
		return LevelModerate
	case pga >= 3.0:
		return LevelLight
	case pga >= 1.0:
		return LevelWeak
	default:
		return LevelNone
	}
}

func (l AlertLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelWeak:
		return "weak"
	case LevelLight:
		return "light"
	case LevelModerate:
		return "moderate"
	case LevelStrong:
		return "strong"
	case LevelSevere:
		return "severe"
	default:
		return "unknown"
	}
}

// MarshalText renders the level as its lowercase name for JSON output.
func (l AlertLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a lowercase level name.
func (l *AlertLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*l = LevelNone
	case "weak":
		*l = LevelWeak
	case "light":
		*l = LevelLight
	case "moderate":
		*l = LevelModerate
	case "strong":
		*l = LevelStrong
	case "severe":
		*l = LevelSevere
	default:
		return fmt.Errorf("unknown alert level %q", text)
	}
	return nil
}

// EstimateMagnitude derives an approximate magnitude from PGA using a
// simplified Gutenberg-Richter relationship, clamped to [1.0, 9.0]. Returns
// nil below 0.1 gal, where no meaningful estimate exists.
//
// This is a coarse single-variable proxy; a real determination also depends
// on distance and depth.
func EstimateMagnitude(pga float64) *float64 {
	if pga < 0.1 {
		return nil
	}
	m := math.Log10(pga) + 2.5
	if m < 1.0 {
		m = 1.0
	} else if m > 9.0 {
		m = 9.0
	}
	return &m
}
