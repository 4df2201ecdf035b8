// Package calibrator implements the process-wide adaptive regional
// calibrator: a reader-writer-locked map of 5x5 degree region cells, each
// tracking an exponentially-weighted moving average of observed scores,
// used to correct systematic regional bias in the scoring engine.
package calibrator

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

const (
	// Alpha is the default EMA smoothing factor (spec.md §4.3) — a slow
	// learner so a handful of outlier observations cannot swing a cell.
	Alpha = 0.12

	cellSize = 5.0
)

// Params tunes the calibrator. Zero fields fall back to the defaults
// below, so Params{} is always a valid configuration.
type Params struct {
	Alpha         float64
	MinSamples    int
	MinDelta      float64
	MaxAdjustment float64
	WarmupDays    int
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Alpha:         Alpha,
		MinSamples:    5,
		MinDelta:      1.0,
		MaxAdjustment: 10.0,
		WarmupDays:    180,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Alpha <= 0 {
		p.Alpha = d.Alpha
	}
	if p.MinSamples <= 0 {
		p.MinSamples = d.MinSamples
	}
	if p.MinDelta <= 0 {
		p.MinDelta = d.MinDelta
	}
	if p.MaxAdjustment <= 0 {
		p.MaxAdjustment = d.MaxAdjustment
	}
	if p.WarmupDays <= 0 {
		p.WarmupDays = d.WarmupDays
	}
	return p
}

type cell struct {
	emaDelta    float64
	sampleCount int
}

// Observation is one replayable history event, the minimal shape the
// calibrator's warm-up needs out of an AnalysisRecord (spec.md §4.3).
type Observation struct {
	Lat       float64
	Lng       float64
	Score     int
	CreatedAt time.Time
}

// Calibrator is the single process-wide stateful component of the core.
// All reads and writes are serialized behind a RWMutex, the same pattern
// the teacher platform uses for its HealthChecker (packages/llm-router).
type Calibrator struct {
	mu        sync.RWMutex
	params    Params
	cells     map[model.RegionKey]*cell
	globalEMA float64
	warmedUp  bool
	logger    *zap.Logger
}

// New constructs an empty, cold calibrator. Call Warmup before serving
// traffic so Delta does not spuriously return 0 for warm regions.
func New(params Params, logger *zap.Logger) *Calibrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calibrator{
		params: params.withDefaults(),
		cells:  make(map[model.RegionKey]*cell),
		logger: logger,
	}
}

// BucketKey computes the 5x5 degree region cell for a coordinate.
func BucketKey(lat, lng float64) model.RegionKey {
	return model.RegionKey{
		LatBucket: math.Floor(lat/cellSize) * cellSize,
		LngBucket: math.Floor(lng/cellSize) * cellSize,
	}
}

// Warmup replays history observations within the warm-up window, in
// ascending time order, through the update rule (spec.md §4.3), then
// marks the calibrator warmed up. Delta does not consult that flag: a
// cell reports 0 only while it holds fewer than MinSamples observations,
// so a cell that reaches that count through Observe calls made before
// Warmup returns already reports a non-zero Delta.
func (c *Calibrator) Warmup(observations []Observation) {
	cutoff := latestOf(observations).AddDate(0, 0, -c.params.WarmupDays)

	filtered := make([]Observation, 0, len(observations))
	for _, obs := range observations {
		if !obs.CreatedAt.Before(cutoff) {
			filtered = append(filtered, obs)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	for _, obs := range filtered {
		c.Observe(obs.Lat, obs.Lng, obs.Score)
	}

	c.mu.Lock()
	c.warmedUp = true
	c.mu.Unlock()

	c.logger.Info("calibrator warm-up complete",
		zap.Int("observations", len(filtered)),
		zap.Int("cells", len(c.cells)),
	)
}

func latestOf(observations []Observation) time.Time {
	var latest time.Time
	for _, obs := range observations {
		if obs.CreatedAt.After(latest) {
			latest = obs.CreatedAt
		}
	}
	if latest.IsZero() {
		latest = time.Now()
	}
	return latest
}

// Observe feeds one successful scoring event into the calibrator. It is
// called exactly once per successful pipeline run, after the Verdict is
// formed but before the response is returned (spec.md §4.3/§5) — the
// calibrator intentionally observes the score it has already adjusted,
// which is what drives the cell toward the global mean over time.
func (c *Calibrator) Observe(lat, lng float64, score int) {
	key := BucketKey(lat, lng)
	v := float64(score)

	c.mu.Lock()
	defer c.mu.Unlock()

	cl, ok := c.cells[key]
	if !ok {
		cl = &cell{}
		c.cells[key] = cl
	}
	// EMA from a zero baseline: a cold cell climbs toward its observed
	// level over successive updates rather than jumping to the first
	// sample, so error after N identical observations of v is exactly
	// (1-alpha)^N * v.
	alpha := c.params.Alpha
	cl.emaDelta = alpha*v + (1-alpha)*cl.emaDelta
	cl.sampleCount++

	c.globalEMA = alpha*v + (1-alpha)*c.globalEMA
}

// Delta returns the bounded regional bias for a coordinate's region:
// the cell's EMA minus the global EMA, clamped to the configured
// adjustment range (spec.md §4.3). It is 0 for cold or thinly-sampled
// cells and for deviations below the noise floor. The scoring engine
// negates the bias when applying it, so a cell that runs systematically
// hot is pulled down (anti-bias, not anti-signal).
func (c *Calibrator) Delta(lat, lng float64) float64 {
	key := BucketKey(lat, lng)

	c.mu.RLock()
	defer c.mu.RUnlock()

	cl, ok := c.cells[key]
	if !ok || cl.sampleCount < c.params.MinSamples {
		return 0
	}

	diff := cl.emaDelta - c.globalEMA
	if math.Abs(diff) < c.params.MinDelta {
		return 0
	}

	return math.Max(-c.params.MaxAdjustment, math.Min(c.params.MaxAdjustment, diff))
}

// WarmedUp reports whether warm-up replay has completed.
func (c *Calibrator) WarmedUp() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.warmedUp
}

// CellCount is an introspection aid for metrics/tests.
func (c *Calibrator) CellCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cells)
}

// Snapshot returns a point-in-time copy of the calibrator state for
// introspection (e.g. an admin/debug endpoint); it never aliases internal
// state.
func (c *Calibrator) Snapshot() map[model.RegionKey]model.CalibratorCell {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[model.RegionKey]model.CalibratorCell, len(c.cells))
	for k, v := range c.cells {
		out[k] = model.CalibratorCell{EMADelta: v.emaDelta, SampleCount: v.sampleCount}
	}
	return out
}
