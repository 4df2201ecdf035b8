package acquisition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumlayer-dev/solar-placement/internal/config"
	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// S6 — Degraded pipeline: with every provider unreachable, Acquire must
// still populate every feature from the fallback tables and report zero
// live data sources.
func TestAcquire_AllProvidersFailing(t *testing.T) {
	a := New(config.ProvidersConfig{Timeout: time.Second}, nil, nil)

	f := a.Acquire(context.Background(), model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5})

	assert.Equal(t, 0, f.DataSources)
	assert.Greater(t, f.SolarIrradiance, 0.0)
	assert.Greater(t, f.WindSpeed, 0.0)
	assert.Greater(t, f.HumidityPct, 0.0)
	assert.Greater(t, f.CloudCoverPct, 0.0)
	assert.Equal(t, 300.0, f.ElevationM, "india regional elevation")
	assert.Equal(t, fallbackSlopeDegrees, f.SlopeDegrees)
	assert.Equal(t, 12.0, f.GridDistanceKM, "india grid-distance table")
	assert.Equal(t, model.ProvenanceRegionalEstimate, f.SolarProvenance)
}

// A live weather provider counts toward data_sources even when the other
// chains degrade, and the 7-day hourly arrays are consumed as means.
func TestAcquire_LiveWeatherOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly":{
			"windspeed_10m":[2,4],
			"temperature_2m":[20,30],
			"relative_humidity_2m":[40,60],
			"cloudcover":[10,30]}}`))
	}))
	defer srv.Close()

	a := New(config.ProvidersConfig{WeatherURL: srv.URL, Timeout: time.Second}, nil, nil)
	f := a.Acquire(context.Background(), model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5})

	assert.Equal(t, 1, f.DataSources)
	assert.Equal(t, model.ProvenanceLive, f.WeatherProvenance)
	assert.Equal(t, 3.0, f.WindSpeed)
	assert.Equal(t, 25.0, f.TemperatureC)
	assert.Equal(t, 50.0, f.HumidityPct)
	assert.Equal(t, 20.0, f.CloudCoverPct)
}

// A weather payload with a missing series is rejected rather than
// producing NaN means, falling back to the latitude-band table.
func TestAcquire_WeatherMissingSeriesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly":{"temperature_2m":[20,30]}}`))
	}))
	defer srv.Close()

	a := New(config.ProvidersConfig{WeatherURL: srv.URL, Timeout: time.Second}, nil, nil)
	f := a.Acquire(context.Background(), model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5})

	assert.Equal(t, model.ProvenanceRegionalEstimate, f.WeatherProvenance)
	assert.False(t, f.WindSpeed != f.WindSpeed, "wind speed must not be NaN")
	assert.Greater(t, f.WindSpeed, 0.0)
}

// Caller-supplied grid distance overrides the region table and fills the
// fourth data-source slot.
func TestAcquire_SuppliedGridDistance(t *testing.T) {
	a := New(config.ProvidersConfig{Timeout: time.Second}, nil, nil)

	q := model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5, GridDistanceKM: 3, HasGridDistance: true}
	f := a.Acquire(context.Background(), q)

	require.Equal(t, 3.0, f.GridDistanceKM)
	assert.Equal(t, 1, f.DataSources)
}

// The daily solar endpoint's sentinel fill values must be filtered before
// averaging (spec.md §4.1/§9).
func TestSolarFetch_FiltersSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"properties":{"parameter":{"ALLSKY_SFC_SW_DWN":{
			"20250101":6.0,"20250102":-999.0,"20250103":5.0}}}}`))
	}))
	defer srv.Close()

	a := New(config.ProvidersConfig{SolarDailyURL: srv.URL, Timeout: time.Second}, nil, nil)
	f := a.Acquire(context.Background(), model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5})

	assert.Equal(t, model.ProvenanceLive, f.SolarProvenance)
	assert.InDelta(t, 5.5, f.SolarIrradiance, 1e-9, "the -999 fill value must be excluded from the mean")
}

// Elevation responses must carry exactly five points in
// [center, north, south, east, west] order; the slope then follows the
// cross-gradient formula.
func TestElevationFetch_FivePointCross(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elevation":[100,110,90,105,95]}`))
	}))
	defer srv.Close()

	a := New(config.ProvidersConfig{ElevationURL: srv.URL, Timeout: time.Second}, nil, nil)
	f := a.Acquire(context.Background(), model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5})

	assert.Equal(t, model.ProvenanceLive, f.ElevationProvenance)
	assert.Equal(t, 100.0, f.ElevationM)
	assert.InDelta(t, 3.1996, f.SlopeDegrees, 0.01)
}
