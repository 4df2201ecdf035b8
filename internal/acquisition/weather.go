package acquisition

import (
	"context"
	"fmt"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// openMeteoForecastResponse mirrors the hourly-arrays shape Open-Meteo
// returns (spec.md §6), consumed as a 7-day arithmetic mean per field.
type openMeteoForecastResponse struct {
	Hourly struct {
		WindSpeed10m       []float64 `json:"windspeed_10m"`
		Temperature2m      []float64 `json:"temperature_2m"`
		RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
		CloudCover         []float64 `json:"cloudcover"`
	} `json:"hourly"`
}

type weatherBundle struct {
	WindSpeed     float64
	TemperatureC  float64
	HumidityPct   float64
	CloudCoverPct float64
}

type weatherSource struct {
	primary *httpProvider
	url     string
}

func (w *weatherSource) fetch(ctx context.Context, lat, lng float64) (weatherBundle, model.ProvenanceKind) {
	if b, ok := w.tryPrimary(ctx, lat, lng); ok {
		return b, model.ProvenanceLive
	}
	wind, temp, humidity, cloud := fallbackWeather(lat)
	return weatherBundle{WindSpeed: wind, TemperatureC: temp, HumidityPct: humidity, CloudCoverPct: cloud}, model.ProvenanceRegionalEstimate
}

func (w *weatherSource) tryPrimary(ctx context.Context, lat, lng float64) (weatherBundle, bool) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&hourly=windspeed_10m,temperature_2m,relative_humidity_2m,cloudcover&forecast_days=7&timezone=UTC",
		w.url, lat, lng)

	var resp openMeteoForecastResponse
	if err := w.primary.getJSON(ctx, url, &resp); err != nil {
		return weatherBundle{}, false
	}
	h := resp.Hourly
	// every series must be populated, or the mean divides by zero.
	if len(h.WindSpeed10m) == 0 || len(h.Temperature2m) == 0 ||
		len(h.RelativeHumidity2m) == 0 || len(h.CloudCover) == 0 {
		return weatherBundle{}, false
	}

	return weatherBundle{
		WindSpeed:     mean(h.WindSpeed10m),
		TemperatureC:  mean(h.Temperature2m),
		HumidityPct:   mean(h.RelativeHumidity2m),
		CloudCoverPct: mean(h.CloudCover),
	}, true
}
