package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsOutOfRange(t *testing.T) {
	center := Point{Lat: 40, Lon: -75}

	assert.ErrorIs(t, Validate(center, 0), ErrInvalidInput)
	assert.ErrorIs(t, Validate(center, -1), ErrInvalidInput)
	assert.ErrorIs(t, Validate(Point{Lat: 91, Lon: 0}, 1), ErrInvalidInput)
	assert.ErrorIs(t, Validate(Point{Lat: -90.5, Lon: 0}, 1), ErrInvalidInput)
	assert.ErrorIs(t, Validate(Point{Lat: 0, Lon: 181}, 1), ErrInvalidInput)
	assert.NoError(t, Validate(center, 1))
	assert.NoError(t, Validate(Point{Lat: -90, Lon: 180}, 1))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Paris to London, roughly 344 km.
	paris := Point{Lat: 48.8566, Lon: 2.3522}
	london := Point{Lat: 51.5074, Lon: -0.1278}
	d := Haversine(paris, london)
	assert.InDelta(t, 344, d, 5)

	assert.Zero(t, Haversine(paris, paris))
}

func TestBoundingBox_NeverUnderIncludes(t *testing.T) {
	center := Point{Lat: 40, Lon: -75}
	const radius = 10.0
	box := BoundingBox(center, radius)

	// Sweep points on the radius circle; all must land inside the box.
	for deg := 0; deg < 360; deg += 5 {
		theta := float64(deg) * math.Pi / 180
		p := Point{
			Lat: center.Lat + (radius/kmPerDegree)*math.Sin(theta)*0.999,
			Lon: center.Lon + (radius/(kmPerDegree*math.Cos(center.Lat*math.Pi/180)))*math.Cos(theta)*0.999,
		}
		if Haversine(center, p) > radius {
			continue
		}
		assert.True(t, box.Contains(p), "point at bearing %d within radius fell outside box", deg)
	}
}

func TestBoundingBox_PolarGuard(t *testing.T) {
	box := BoundingBox(Point{Lat: 90, Lon: 0}, 5)
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestBoundingBox_EquatorUsesCosineCorrection(t *testing.T) {
	// cos(0) = 1, so the box is square at the equator rather than degenerate.
	box := BoundingBox(Point{Lat: 0, Lon: 0}, 111.32)
	assert.InDelta(t, 1.0, box.MaxLat, 1e-9)
	assert.InDelta(t, 1.0, box.MaxLon, 1e-9)
}

func TestFilterWithinRadius_ExactMembership(t *testing.T) {
	center := Point{Lat: 40, Lon: -75}
	candidates := []Point{
		{Lat: 40.0045, Lon: -75},  // ~0.5 km north
		{Lat: 40.45, Lon: -75},    // ~50 km north
		{Lat: 40, Lon: -75.00587}, // ~0.5 km west
	}

	matches, err := FilterWithinRadius(center, 1, candidates)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.LessOrEqual(t, m.DistanceKm, 1.0)
		assert.NotEqual(t, 1, m.Index)
	}
}

func TestFilterWithinRadius_SortedByDistance(t *testing.T) {
	center := Point{Lat: 40, Lon: -75}
	candidates := []Point{
		{Lat: 40.008, Lon: -75},
		{Lat: 40.001, Lon: -75},
		{Lat: 40.004, Lon: -75},
	}
	matches, err := FilterWithinRadius(center, 2, candidates)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, []int{1, 2, 0}, []int{matches[0].Index, matches[1].Index, matches[2].Index})
	assert.True(t, matches[0].DistanceKm <= matches[1].DistanceKm)
	assert.True(t, matches[1].DistanceKm <= matches[2].DistanceKm)
}

func TestFilterWithinRadius_MonotonicInRadius(t *testing.T) {
	center := Point{Lat: 55.75, Lon: 37.62}
	candidates := []Point{
		{Lat: 55.751, Lon: 37.63},
		{Lat: 55.80, Lon: 37.50},
		{Lat: 56.10, Lon: 37.62},
		{Lat: 54.00, Lon: 37.62},
		{Lat: 55.75, Lon: 38.90},
	}

	prev := map[int]bool{}
	for _, radius := range []float64{1, 10, 50, 100, 500} {
		matches, err := FilterWithinRadius(center, radius, candidates)
		require.NoError(t, err)
		got := map[int]bool{}
		for _, m := range matches {
			got[m.Index] = true
		}
		for idx := range prev {
			assert.True(t, got[idx], "index %d dropped when radius grew to %v", idx, radius)
		}
		prev = got
	}
}

func TestBoundingBox_WrapsAtAntimeridian(t *testing.T) {
	box := BoundingBox(Point{Lat: 0, Lon: 179.95}, 25)
	require.True(t, box.WrapsLon())

	// Both sides of the ±180 line are inside the wrapped interval.
	assert.True(t, box.Contains(Point{Lat: 0, Lon: 179.99}))
	assert.True(t, box.Contains(Point{Lat: 0, Lon: -179.95}))
	assert.False(t, box.Contains(Point{Lat: 0, Lon: 0}))

	// Mirror image, reaching westwards across the line.
	box = BoundingBox(Point{Lat: 0, Lon: -179.95}, 25)
	require.True(t, box.WrapsLon())
	assert.True(t, box.Contains(Point{Lat: 0, Lon: 179.95}))
}

// TestFilterWithinRadius_AcrossAntimeridian: a candidate on the far side of
// the ±180 line whose great-circle distance is within radius must survive the
// bounding-box phase.
func TestFilterWithinRadius_AcrossAntimeridian(t *testing.T) {
	center := Point{Lat: 0, Lon: 179.95}
	farSide := Point{Lat: 0, Lon: -179.95} // ~11.1 km across the line

	require.InDelta(t, 11.1, Haversine(center, farSide), 0.2)

	matches, err := FilterWithinRadius(center, 25, []Point{farSide})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Index)
}

func TestFilterWithinRadius_InvalidInput(t *testing.T) {
	_, err := FilterWithinRadius(Point{Lat: 200, Lon: 0}, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
