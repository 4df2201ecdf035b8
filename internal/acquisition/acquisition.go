// Package acquisition implements the concurrent data-acquisition layer:
// three independent external provider chains (solar irradiance, weather
// bundle, elevation+slope), each degrading silently through fallbacks, so
// that a complete Features struct is always produced (spec.md §4.1).
package acquisition

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/config"
	"github.com/quantumlayer-dev/solar-placement/internal/model"
	"github.com/quantumlayer-dev/solar-placement/internal/telemetry"
)

// Acquirer owns the three provider chains and the optional feature
// cache. It never returns an error under normal operation: the only
// failure mode (ConfigurationError, spec.md §7) would require the
// fallback tables themselves to be absent, which cannot happen with the
// tables compiled into this package.
type Acquirer struct {
	solar     *solarSource
	weather   *weatherSource
	elevation *elevationSource
	cache     *FeatureCache
	timeout   time.Duration
	logger    *zap.Logger
}

// New builds an Acquirer from provider configuration. cache may be nil.
func New(cfg config.ProvidersConfig, cache *FeatureCache, logger *zap.Logger) *Acquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Acquirer{
		solar: &solarSource{
			daily:       newHTTPProvider("solar-daily", timeout, logger),
			climatology: newHTTPProvider("solar-climatology", timeout, logger),
			dailyURL:    cfg.SolarDailyURL,
			climURL:     cfg.SolarClimatologyURL,
		},
		weather: &weatherSource{
			primary: newHTTPProvider("weather", timeout, logger),
			url:     cfg.WeatherURL,
		},
		elevation: &elevationSource{
			primary:   newHTTPProvider("elevation-primary", timeout, logger),
			secondary: newHTTPProvider("elevation-secondary", timeout, logger),
			url:       cfg.ElevationURL,
			fallback:  cfg.ElevationFallbackURL,
		},
		cache:   cache,
		timeout: timeout,
		logger:  logger,
	}
}

// Acquire fetches all features for a coordinate. The three provider
// fetches run concurrently, each on its own context.WithTimeout child of
// ctx — deliberately NOT a shared cancellable group context, so the
// timeout or failure of one provider can never cancel the others
// (spec.md §4.1/§5).
func (a *Acquirer) Acquire(ctx context.Context, q model.Query) model.Features {
	if cached, ok := a.cache.Get(ctx, q.Lat, q.Lng); ok {
		return cached
	}

	var (
		wg            sync.WaitGroup
		solarValue    float64
		solarProv     model.ProvenanceKind
		weather       weatherBundle
		weatherProv   model.ProvenanceKind
		elevation     elevationResult
		elevationProv model.ProvenanceKind
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		solarValue, solarProv = a.solar.fetch(fetchCtx, q.Lat, q.Lng)
	}()

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		weather, weatherProv = a.weather.fetch(fetchCtx, q.Lat, q.Lng)
	}()

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		elevation, elevationProv = a.elevation.fetch(fetchCtx, q.Lat, q.Lng)
	}()

	wg.Wait()

	telemetry.RecordProviderCall("solar", outcomeLabel(solarProv))
	telemetry.RecordProviderCall("weather", outcomeLabel(weatherProv))
	telemetry.RecordProviderCall("elevation", outcomeLabel(elevationProv))

	gridDistanceKM := regionalGridDistance(q.Lat, q.Lng)
	gridSupplied := false
	if q.HasGridDistance {
		gridDistanceKM = q.GridDistanceKM
		gridSupplied = true
	}

	f := model.Features{
		SolarIrradiance: solarValue,
		WindSpeed:       weather.WindSpeed,
		TemperatureC:    weather.TemperatureC,
		HumidityPct:     weather.HumidityPct,
		CloudCoverPct:   weather.CloudCoverPct,
		ElevationM:      elevation.ElevationM,
		SlopeDegrees:    elevation.SlopeDegrees,
		GridDistanceKM:  gridDistanceKM,

		SolarProvenance:     solarProv,
		WeatherProvenance:   weatherProv,
		ElevationProvenance: elevationProv,
	}
	f.DataSources = dataSourceCount(f, gridSupplied)

	a.cache.Set(ctx, q.Lat, q.Lng, f)
	return f
}

func outcomeLabel(p model.ProvenanceKind) string {
	switch p {
	case model.ProvenanceLive:
		return "live"
	case model.ProvenanceClimatology:
		return "climatology"
	default:
		return "fallback"
	}
}

// dataSourceCount counts how many of the four sources produced live (not
// fallback) data, where the fourth slot is "grid distance supplied or a
// high-quality regional estimate" (spec.md §4.1).
func dataSourceCount(f model.Features, gridSupplied bool) int {
	count := 0
	if f.SolarProvenance == model.ProvenanceLive {
		count++
	}
	if f.WeatherProvenance == model.ProvenanceLive {
		count++
	}
	if f.ElevationProvenance == model.ProvenanceLive {
		count++
	}
	if gridSupplied {
		count++
	}
	return count
}
