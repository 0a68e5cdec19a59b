package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// FeatureCollection is the top-level GeoJSON response from a USGS summary feed.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Metadata Metadata  `json:"metadata"`
	Features []Feature `json:"features"`
}

// Metadata describes the feed response itself.
type Metadata struct {
	Generated int64  `json:"generated"` // ms since epoch
	URL       string `json:"url"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	API       string `json:"api"`
	Count     int    `json:"count"`
}

// ParseFeed deserializes and validates a GeoJSON summary feed payload.
func ParseFeed(data []byte) (*FeatureCollection, error) {
	var feed FeatureCollection
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if err := feed.Validate(); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Validate checks the response structure.
func (fc *FeatureCollection) Validate() error {
	if fc.Type != "FeatureCollection" {
		return fmt.Errorf("invalid feed: expected type %q, got %q", "FeatureCollection", fc.Type)
	}
	return nil
}

// Feature is a single earthquake event from the feed.
type Feature struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"` // stable dedupe key
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Validate checks the event structure.
func (f *Feature) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("invalid feature: empty event id")
	}
	if len(f.Geometry.Coordinates) != 3 {
		return fmt.Errorf("invalid feature %s: expected 3 coordinates, got %d", f.ID, len(f.Geometry.Coordinates))
	}
	return nil
}

// Longitude returns the event longitude in degrees.
func (f *Feature) Longitude() float64 {
	if len(f.Geometry.Coordinates) > 0 {
		return f.Geometry.Coordinates[0]
	}
	return 0
}

// Latitude returns the event latitude in degrees.
func (f *Feature) Latitude() float64 {
	if len(f.Geometry.Coordinates) > 1 {
		return f.Geometry.Coordinates[1]
	}
	return 0
}

// DepthKm returns the event depth in kilometers, positive down.
func (f *Feature) DepthKm() float64 {
	if len(f.Geometry.Coordinates) > 2 {
		return f.Geometry.Coordinates[2]
	}
	return 0
}

// Time returns the event origin time.
func (f *Feature) Time() time.Time {
	return time.UnixMilli(f.Properties.Time).UTC()
}

// Geometry holds the event location as a GeoJSON point.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth_km]
}

// Properties carries the USGS event attributes used by the monitor.
type Properties struct {
	Mag     *float64 `json:"mag"`
	MagType string   `json:"magType,omitempty"`
	Place   string   `json:"place,omitempty"`
	Time    int64    `json:"time"`    // ms since epoch
	Updated int64    `json:"updated"` // ms since epoch
	Status  string   `json:"status"`  // "automatic" or "reviewed"
	Alert   *string  `json:"alert"`   // null, green, yellow, orange, red
	Tsunami int      `json:"tsunami"`
	Sig     int      `json:"sig"`
	Net     string   `json:"net"`
	Code    string   `json:"code"`
	URL     string   `json:"url,omitempty"`
	Title   string   `json:"title,omitempty"`
	Felt    *int     `json:"felt"`
	CDI     *float64 `json:"cdi"`
	MMI     *float64 `json:"mmi"`
	Type    string   `json:"type,omitempty"` // earthquake, quarry blast, ...
}

// QuakeEvent is the flattened representation emitted downstream after an
// event passes filtering and deduplication.
type QuakeEvent struct {
	ID            string    `json:"id"`
	Time          time.Time `json:"time"`
	Magnitude     *float64  `json:"magnitude"`
	MagnitudeType string    `json:"magnitude_type,omitempty"`
	DepthKm       float64   `json:"depth_km"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Place         string    `json:"place,omitempty"`
	Alert         string    `json:"alert,omitempty"`
	Tsunami       bool      `json:"tsunami"`
	Status        string    `json:"status"`
	Significance  int       `json:"significance"`
	URL           string    `json:"url,omitempty"`

	// Update marks a revision of a previously emitted event.
	Update bool `json:"update,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// FlattenFeature converts a feed Feature into the emitted QuakeEvent form,
// stamping ProcessedAt from the package clock.
func FlattenFeature(f *Feature) QuakeEvent {
	var alert string
	if f.Properties.Alert != nil {
		alert = *f.Properties.Alert
	}

	return QuakeEvent{
		ID:            f.ID,
		Time:          f.Time(),
		Magnitude:     f.Properties.Mag,
		MagnitudeType: f.Properties.MagType,
		DepthKm:       f.DepthKm(),
		Latitude:      f.Latitude(),
		Longitude:     f.Longitude(),
		Place:         f.Properties.Place,
		Alert:         alert,
		Tsunami:       f.Properties.Tsunami != 0,
		Status:        f.Properties.Status,
		Significance:  f.Properties.Sig,
		URL:           f.Properties.URL,
		ProcessedAt:   clock.Now().UTC(),
	}
}
