package acquisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackIrradiance_LatitudeBands(t *testing.T) {
	cases := []struct {
		lat  float64
		want float64
	}{
		{0, 5.8},
		{10, 5.8},
		{15, 5.8}, // upper boundary of the first band, inclusive
		{15.1, 5.2},
		{-20, 5.2},
		{45, 4.3},
		{60, 3.1},
		{90, 1.8},
		{-90, 1.8},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, fallbackIrradiance(c.lat), "lat %v", c.lat)
	}
}

func TestFallbackWeather_LatitudeBands(t *testing.T) {
	wind, temp, humidity, cloud := fallbackWeather(10)
	assert.Equal(t, 3.0, wind)
	assert.Equal(t, 27.0, temp)
	assert.Equal(t, 70.0, humidity)
	assert.Equal(t, 45.0, cloud)

	wind, temp, humidity, cloud = fallbackWeather(80)
	assert.Equal(t, 6.5, wind)
	assert.Equal(t, -10.0, temp)
	assert.Equal(t, 75.0, humidity)
	assert.Equal(t, 70.0, cloud)
}

func TestFallbackElevation_RegionalLookup(t *testing.T) {
	assert.Equal(t, 300.0, fallbackElevation(20, 75), "india region")
	assert.Equal(t, 400.0, fallbackElevation(0, 150), "outside every defined region box")
}

func TestRegionalGridDistance_Lookup(t *testing.T) {
	assert.Equal(t, 12.0, regionalGridDistance(20, 75), "india region")
	assert.Equal(t, globalDefaultGridDistanceKM, regionalGridDistance(0, 150), "outside every defined region box")
}

// crossPoints must return [center, north, south, east, west] in exactly
// that order (spec.md §6 ordering requirement).
func TestCrossPoints_Ordering(t *testing.T) {
	points := crossPoints(0, 0)
	center, north, south, east, west := points[0], points[1], points[2], points[3], points[4]

	assert.Equal(t, [2]float64{0, 0}, center)
	assert.Greater(t, north[0], center[0])
	assert.Equal(t, center[1], north[1])
	assert.Less(t, south[0], center[0])
	assert.Equal(t, center[1], south[1])
	assert.Greater(t, east[1], center[1])
	assert.Equal(t, center[0], east[0])
	assert.Less(t, west[1], center[1])
	assert.Equal(t, center[0], west[0])
}

func TestElevationFromCross_FlatTerrainHasZeroSlope(t *testing.T) {
	flat := [5]float64{500, 500, 500, 500, 500}
	result := elevationFromCross(flat)

	assert.Equal(t, 500.0, result.ElevationM)
	assert.Equal(t, 0.0, result.SlopeDegrees)
}

// Verifies the exact slope formula against a hand-computed gradient:
// dz/dx = (east-west)/400, dz/dy = (north-south)/400,
// slope = atan(sqrt(dzdx^2+dzdy^2)) in degrees.
func TestElevationFromCross_SlopeFormula(t *testing.T) {
	e := [5]float64{100, 110, 90, 105, 95} // center, north, south, east, west
	result := elevationFromCross(e)

	assert.Equal(t, 100.0, result.ElevationM)
	assert.InDelta(t, 3.1996, result.SlopeDegrees, 0.01)
}
