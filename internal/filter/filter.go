// Package filter applies optional attribute and geographic criteria to
// earthquake events before they reach deduplication and publishing.
package filter

import (
	"github.com/couchcryptid/quake-monitor/internal/domain"
	"github.com/couchcryptid/quake-monitor/internal/geo"
)

// EventFilter is a conjunction of optional criteria: every criterion that is
// set must pass, and an unset criterion always passes. The zero value matches
// everything. A filter holds read-only configuration and is safe to share
// across goroutines.
type EventFilter struct {
	MinMagnitude    *float64
	MaxDepth        *float64
	BBox            *geo.BBox
	Radius          *geo.RadiusFilter
	SignificantOnly bool
}

// Matches reports whether the event passes all configured criteria. Cheap
// scalar checks run before the geographic ones.
func (f *EventFilter) Matches(e *domain.Feature) bool {
	return f.checkMagnitude(e) &&
		f.checkDepth(e) &&
		f.checkSignificant(e) &&
		f.checkBBox(e) &&
		f.checkRadius(e)
}

// checkMagnitude fails events with no magnitude when a minimum is set.
func (f *EventFilter) checkMagnitude(e *domain.Feature) bool {
	if f.MinMagnitude == nil {
		return true
	}
	return e.Properties.Mag != nil && *e.Properties.Mag >= *f.MinMagnitude
}

func (f *EventFilter) checkDepth(e *domain.Feature) bool {
	if f.MaxDepth == nil {
		return true
	}
	return e.DepthKm() <= *f.MaxDepth
}

func (f *EventFilter) checkBBox(e *domain.Feature) bool {
	if f.BBox == nil {
		return true
	}
	return f.BBox.Contains(e.Latitude(), e.Longitude())
}

func (f *EventFilter) checkRadius(e *domain.Feature) bool {
	if f.Radius == nil {
		return true
	}
	return f.Radius.Contains(e.Latitude(), e.Longitude())
}

// checkSignificant keys off alert presence: an event is significant when the
// feed assigned it any PAGER alert level.
func (f *EventFilter) checkSignificant(e *domain.Feature) bool {
	if !f.SignificantOnly {
		return true
	}
	return e.Properties.Alert != nil && *e.Properties.Alert != ""
}
