package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidInput reports caller-supplied coordinates or radius out of range.
var ErrInvalidInput = errors.New("invalid geo input")

const (
	earthRadiusKm = 6371.0
	// Kilometers per degree of latitude; also per degree of longitude at the equator.
	kmPerDegree = 111.32
	// Below this cos(lat) the longitude correction blows up; treat as polar.
	polarCosEpsilon = 1e-6
)

// Point is a location in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Box is an axis-aligned latitude/longitude rectangle. When the longitude
// interval crosses the antimeridian, MinLon > MaxLon and the interval is the
// union [MinLon, 180] ∪ [-180, MaxLon].
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// WrapsLon reports whether the longitude interval crosses the antimeridian.
func (b Box) WrapsLon() bool {
	return b.MinLon > b.MaxLon
}

// Contains reports whether p falls inside the box (edges inclusive).
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.WrapsLon() {
		return p.Lon >= b.MinLon || p.Lon <= b.MaxLon
	}
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Validate checks the radius-search precondition: radiusKm > 0, latitude in
// [-90, 90], longitude in [-180, 180].
func Validate(center Point, radiusKm float64) error {
	if radiusKm <= 0 {
		return fmt.Errorf("%w: radius_km must be > 0, got %v", ErrInvalidInput, radiusKm)
	}
	if center.Lat < -90 || center.Lat > 90 {
		return fmt.Errorf("%w: latitude must be in [-90, 90], got %v", ErrInvalidInput, center.Lat)
	}
	if center.Lon < -180 || center.Lon > 180 {
		return fmt.Errorf("%w: longitude must be in [-180, 180], got %v", ErrInvalidInput, center.Lon)
	}
	return nil
}

// BoundingBox returns a box guaranteed to contain every point within radiusKm
// great-circle distance of center. Latitude delta is radius/111.32; longitude
// delta is corrected by cos(lat). Near the poles cos(lat) approaches zero, so
// the box spans the full longitude range there. A box reaching past the ±180
// line wraps rather than clamps, so far-side candidates stay inside. The box
// may over-include, never under-include.
func BoundingBox(center Point, radiusKm float64) Box {
	latDelta := radiusKm / kmPerDegree

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	lonDelta := 180.0
	if cosLat > polarCosEpsilon {
		lonDelta = radiusKm / (kmPerDegree * cosLat)
		if lonDelta > 180 {
			lonDelta = 180
		}
	}

	box := Box{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
	}
	if lonDelta >= 180 {
		box.MinLon, box.MaxLon = -180, 180
		return box
	}
	box.MinLon = wrapLon(center.Lon - lonDelta)
	box.MaxLon = wrapLon(center.Lon + lonDelta)
	return box
}

// wrapLon normalizes a longitude into [-180, 180].
func wrapLon(lon float64) float64 {
	if lon < -180 {
		return lon + 360
	}
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// Haversine returns the great-circle distance between two points in kilometers.
func Haversine(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Match pairs a surviving candidate index with its exact distance.
type Match struct {
	Index      int
	DistanceKm float64
}

// FilterWithinRadius applies the two-phase test: a bounding-box pre-filter,
// then the exact haversine distance. Exactness comes from phase two, so box
// looseness cannot produce false positives. Results are sorted ascending by
// distance; indices refer to the candidates slice.
func FilterWithinRadius(center Point, radiusKm float64, candidates []Point) ([]Match, error) {
	if err := Validate(center, radiusKm); err != nil {
		return nil, err
	}

	box := BoundingBox(center, radiusKm)
	matches := make([]Match, 0, len(candidates))
	for i, p := range candidates {
		if !box.Contains(p) {
			continue
		}
		if d := Haversine(center, p); d <= radiusKm {
			matches = append(matches, Match{Index: i, DistanceKm: d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	return matches, nil
}
