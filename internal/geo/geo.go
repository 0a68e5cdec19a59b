// Package geo provides great-circle distance math and the geographic
// filter primitives (bounding box, radius) used to scope the event stream.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// latitude/longitude points, computed with the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	deltaLat := (lat2 - lat1) * math.Pi / 180.0
	deltaLon := (lon2 - lon1) * math.Pi / 180.0

	sinLat := math.Sin(deltaLat / 2.0)
	sinLon := math.Sin(deltaLon / 2.0)

	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon
	// a stays in [0,1] for valid inputs; guard against IEEE-754 rounding
	// pushing it marginally outside near antipodal points.
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}

	return earthRadiusKm * 2.0 * math.Asin(math.Sqrt(a))
}

// BBox is a latitude/longitude bounding box. Both bounds are inclusive.
//
// Boxes that cross the antimeridian (min_lon > max_lon) are not corrected:
// such a box matches nothing. This is a known limitation.
type BBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// ParseBBox parses a bounding box from "minlat,minlon,maxlat,maxlon".
func ParseBBox(s string) (BBox, error) {
	vals, err := parseFloats(s, 4, "bbox")
	if err != nil {
		return BBox{}, err
	}

	b := BBox{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}

	if err := checkLatRange("min_lat", b.MinLat); err != nil {
		return BBox{}, err
	}
	if err := checkLatRange("max_lat", b.MaxLat); err != nil {
		return BBox{}, err
	}
	if err := checkLonRange("min_lon", b.MinLon); err != nil {
		return BBox{}, err
	}
	if err := checkLonRange("max_lon", b.MaxLon); err != nil {
		return BBox{}, err
	}
	if b.MinLat > b.MaxLat {
		return BBox{}, fmt.Errorf("min_lat %g must be <= max_lat %g", b.MinLat, b.MaxLat)
	}

	return b, nil
}

// Contains reports whether the point lies within the box, bounds inclusive.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// RadiusFilter matches points within a fixed great-circle distance of a center.
type RadiusFilter struct {
	CenterLat float64
	CenterLon float64
	RadiusKm  float64
}

// ParseRadius parses a radius filter from "lat,lon,radius_km".
func ParseRadius(s string) (RadiusFilter, error) {
	vals, err := parseFloats(s, 3, "radius")
	if err != nil {
		return RadiusFilter{}, err
	}

	r := RadiusFilter{CenterLat: vals[0], CenterLon: vals[1], RadiusKm: vals[2]}

	if err := checkLatRange("latitude", r.CenterLat); err != nil {
		return RadiusFilter{}, err
	}
	if err := checkLonRange("longitude", r.CenterLon); err != nil {
		return RadiusFilter{}, err
	}
	if r.RadiusKm <= 0 {
		return RadiusFilter{}, fmt.Errorf("radius must be positive, got %g", r.RadiusKm)
	}

	return r, nil
}

// Contains reports whether the point lies within RadiusKm of the center,
// boundary inclusive.
func (r RadiusFilter) Contains(lat, lon float64) bool {
	return Distance(r.CenterLat, r.CenterLon, lat, lon) <= r.RadiusKm
}

func parseFloats(s string, want int, field string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("%s requires %d comma-separated values, got %d", field, want, len(parts))
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number in %s: %q", field, strings.TrimSpace(p))
		}
		vals[i] = v
	}
	return vals, nil
}

func checkLatRange(name string, v float64) error {
	if v < -90 || v > 90 {
		return fmt.Errorf("%s %g out of range [-90, 90]", name, v)
	}
	return nil
}

func checkLonRange(name string, v float64) error {
	if v < -180 || v > 180 {
		return fmt.Errorf("%s %g out of range [-180, 180]", name, v)
	}
	return nil
}
