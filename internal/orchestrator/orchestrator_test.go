package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumlayer-dev/solar-placement/internal/acquisition"
	"github.com/quantumlayer-dev/solar-placement/internal/calibrator"
	"github.com/quantumlayer-dev/solar-placement/internal/config"
	"github.com/quantumlayer-dev/solar-placement/internal/financial"
	"github.com/quantumlayer-dev/solar-placement/internal/model"
	"github.com/quantumlayer-dev/solar-placement/internal/summarizer"
)

// newOfflineOrchestrator wires a pipeline whose providers all fail
// instantly (empty endpoint URLs), with no summarizer backends and no
// history store, so every run exercises the degraded-but-successful path
// without touching the network.
func newOfflineOrchestrator(cal *calibrator.Calibrator) *Orchestrator {
	acq := acquisition.New(config.ProvidersConfig{Timeout: time.Second}, nil, nil)
	sum := summarizer.New(nil, nil, nil)
	return New(acq, cal, financial.DefaultParams(), sum, nil, DefaultDeadlines(), nil)
}

// S6 — Degraded pipeline: all providers down, no summarizer, no store.
// The request must still succeed with fallback features, the template
// summary, and in-range scoring output.
func TestRun_DegradedPipelineStillSucceeds(t *testing.T) {
	cal := calibrator.New(calibrator.Params{}, nil)
	o := newOfflineOrchestrator(cal)

	q := model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5, ElectricityRate: 8}
	resp, err := o.Run(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.DataSources)
	assert.GreaterOrEqual(t, resp.Score, 0)
	assert.LessOrEqual(t, resp.Score, 100)
	assert.GreaterOrEqual(t, resp.Confidence, 0)
	assert.LessOrEqual(t, resp.Confidence, 100)
	assert.Equal(t, "fallback-template", resp.AIProvider)
	assert.NotEmpty(t, resp.AISummary)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, model.AlgorithmVersion, resp.AlgorithmVersion)
}

// The calibrator must be fed exactly one observation per successful run,
// before the response is returned.
func TestRun_FeedsCalibratorOncePerRequest(t *testing.T) {
	cal := calibrator.New(calibrator.Params{}, nil)
	o := newOfflineOrchestrator(cal)

	q := model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5, ElectricityRate: 8}
	_, err := o.Run(context.Background(), q)
	require.NoError(t, err)

	snap := cal.Snapshot()[calibrator.BucketKey(q.Lat, q.Lng)]
	assert.Equal(t, 1, snap.SampleCount)

	_, err = o.Run(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, cal.Snapshot()[calibrator.BucketKey(q.Lat, q.Lng)].SampleCount)
}

// An already-expired request context maps to the deadline error rather
// than a partial response.
func TestRun_ExpiredContextReturnsDeadlineError(t *testing.T) {
	cal := calibrator.New(calibrator.Params{}, nil)
	o := newOfflineOrchestrator(cal)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := o.Run(ctx, model.Query{Lat: 20, Lng: 75, PlantSizeKW: 5, ElectricityRate: 8})
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}
