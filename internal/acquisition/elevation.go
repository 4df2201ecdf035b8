package acquisition

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// metersPerDegreeLat is used to convert the 200m cross-offset into
// latitude/longitude deltas (spec.md §4.1).
const metersPerDegreeLat = 111320.0

// openMeteoElevationResponse is the batch elevation endpoint's shape:
// an ordered list of elevations matching the ordered list of query
// points (spec.md §6 "[center, north, south, east, west]").
type openMeteoElevationResponse struct {
	Elevation []float64 `json:"elevation"`
}

type elevationSource struct {
	primary   *httpProvider
	secondary *httpProvider
	url       string
	fallback  string
}

type elevationResult struct {
	ElevationM   float64
	SlopeDegrees float64
}

func (e *elevationSource) fetch(ctx context.Context, lat, lng float64) (elevationResult, model.ProvenanceKind) {
	points := crossPoints(lat, lng)

	if values, ok := e.query(ctx, e.primary, e.url, points); ok {
		return elevationFromCross(values), model.ProvenanceLive
	}
	if values, ok := e.query(ctx, e.secondary, e.fallback, points); ok {
		return elevationFromCross(values), model.ProvenanceLive
	}

	return elevationResult{
		ElevationM:   fallbackElevation(lat, lng),
		SlopeDegrees: fallbackSlopeDegrees,
	}, model.ProvenanceRegionalEstimate
}

// crossPoints returns [center, north, south, east, west], offset by
// 200m, in that exact order (spec.md §6 ordering requirement).
func crossPoints(lat, lng float64) [5][2]float64 {
	dLat := 200 / metersPerDegreeLat
	dLng := 200 / (metersPerDegreeLat * math.Cos(lat*math.Pi/180))

	return [5][2]float64{
		{lat, lng},
		{lat + dLat, lng},
		{lat - dLat, lng},
		{lat, lng + dLng},
		{lat, lng - dLng},
	}
}

func (e *elevationSource) query(ctx context.Context, provider *httpProvider, baseURL string, points [5][2]float64) ([5]float64, bool) {
	if provider == nil || baseURL == "" {
		return [5]float64{}, false
	}

	lats := make([]string, len(points))
	lngs := make([]string, len(points))
	for i, p := range points {
		lats[i] = fmt.Sprintf("%.6f", p[0])
		lngs[i] = fmt.Sprintf("%.6f", p[1])
	}
	url := fmt.Sprintf("%s?latitude=%s&longitude=%s", baseURL, strings.Join(lats, ","), strings.Join(lngs, ","))

	var resp openMeteoElevationResponse
	if err := provider.getJSON(ctx, url, &resp); err != nil {
		return [5]float64{}, false
	}
	if len(resp.Elevation) != 5 {
		return [5]float64{}, false
	}

	var out [5]float64
	copy(out[:], resp.Elevation)
	return out, true
}

// elevationFromCross applies the slope formula of spec.md §4.1 to the
// five cross-point elevations (center, north, south, east, west).
func elevationFromCross(e [5]float64) elevationResult {
	center, north, south, east, west := e[0], e[1], e[2], e[3], e[4]

	dzdx := (east - west) / 400
	dzdy := (north - south) / 400
	slope := math.Atan(math.Sqrt(dzdx*dzdx+dzdy*dzdy)) * 180 / math.Pi

	return elevationResult{ElevationM: center, SlopeDegrees: slope}
}
