package acquisition

import (
	"context"
	"fmt"
	"time"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// sentinelFloor is the fill-value predicate: any daily/climatology value
// at or below this is discarded before averaging (spec.md §4.1/§9).
const sentinelFloor = -900.0

// nasaPowerResponse models the subset of the NASA POWER daily/climatology
// response this service consumes: a nested map of parameter -> date/month
// key -> value.
type nasaPowerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

func (r nasaPowerResponse) allSkyValues() []float64 {
	values, ok := r.Properties.Parameter["ALLSKY_SFC_SW_DWN"]
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > sentinelFloor {
			out = append(out, v)
		}
	}
	return out
}

type solarSource struct {
	daily       *httpProvider
	climatology *httpProvider
	dailyURL    string
	climURL     string
}

// fetch implements the solar irradiance provider chain: 365-day daily
// mean, filtered of sentinel fill values, falling back to the
// climatology endpoint's long-term annual mean, then to the
// latitude-band estimator table.
func (s *solarSource) fetch(ctx context.Context, lat, lng float64) (value float64, provenance model.ProvenanceKind) {
	if v, ok := s.tryDaily(ctx, lat, lng); ok {
		return v, model.ProvenanceLive
	}
	if v, ok := s.tryClimatology(ctx, lat, lng); ok {
		return v, model.ProvenanceClimatology
	}
	return fallbackIrradiance(lat), model.ProvenanceRegionalEstimate
}

func (s *solarSource) tryDaily(ctx context.Context, lat, lng float64) (float64, bool) {
	end := time.Now().AddDate(0, 0, -1)
	start := end.AddDate(-1, 0, 0)
	url := fmt.Sprintf("%s?parameters=ALLSKY_SFC_SW_DWN&community=RE&longitude=%.4f&latitude=%.4f&start=%s&end=%s&format=JSON",
		s.dailyURL, lng, lat, start.Format("20060102"), end.Format("20060102"))

	var resp nasaPowerResponse
	if err := s.daily.getJSON(ctx, url, &resp); err != nil {
		return 0, false
	}
	values := resp.allSkyValues()
	if len(values) == 0 {
		return 0, false
	}
	return mean(values), true
}

func (s *solarSource) tryClimatology(ctx context.Context, lat, lng float64) (float64, bool) {
	url := fmt.Sprintf("%s?parameters=ALLSKY_SFC_SW_DWN&community=RE&longitude=%.4f&latitude=%.4f&format=JSON",
		s.climURL, lng, lat)

	var resp nasaPowerResponse
	if err := s.climatology.getJSON(ctx, url, &resp); err != nil {
		return 0, false
	}
	values := resp.allSkyValues()
	if len(values) == 0 {
		return 0, false
	}
	return mean(values), true
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
