// Package orchestrator sequences one request through data acquisition,
// scoring, financial projection, the summarizer, and persistence, and
// enforces the overall request deadline (spec.md §4.5).
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quantumlayer-dev/solar-placement/internal/acquisition"
	"github.com/quantumlayer-dev/solar-placement/internal/calibrator"
	"github.com/quantumlayer-dev/solar-placement/internal/financial"
	"github.com/quantumlayer-dev/solar-placement/internal/history"
	"github.com/quantumlayer-dev/solar-placement/internal/model"
	"github.com/quantumlayer-dev/solar-placement/internal/scoring"
	"github.com/quantumlayer-dev/solar-placement/internal/summarizer"
	"github.com/quantumlayer-dev/solar-placement/internal/telemetry"
)

// ErrDeadlineExceeded is returned when the hard request deadline is hit
// (spec.md §4.5/§7 DeadlineExceeded).
var ErrDeadlineExceeded = errors.New("deadline_exceeded")

// Deadlines bundles the soft/hard overall deadlines and the summarizer's
// own deadline (spec.md §4.5).
type Deadlines struct {
	Soft              time.Duration
	Hard              time.Duration
	SummarizerTimeout time.Duration
}

// DefaultDeadlines matches spec.md §4.5: 30s soft, 60s hard, 5s summarizer.
func DefaultDeadlines() Deadlines {
	return Deadlines{Soft: 30 * time.Second, Hard: 60 * time.Second, SummarizerTimeout: 5 * time.Second}
}

// Orchestrator wires together every pipeline component for one request.
type Orchestrator struct {
	acquirer   *acquisition.Acquirer
	calibrator *calibrator.Calibrator
	finParams  financial.Params
	summarizer *summarizer.Client
	history    *history.Store
	deadlines  Deadlines
	logger     *zap.Logger
}

// New constructs an Orchestrator. history may be nil (persistence
// disabled); the pipeline still runs, just without a store to write to.
func New(
	acquirer *acquisition.Acquirer,
	cal *calibrator.Calibrator,
	finParams financial.Params,
	summarizerClient *summarizer.Client,
	historyStore *history.Store,
	deadlines Deadlines,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		acquirer:   acquirer,
		calibrator: cal,
		finParams:  finParams,
		summarizer: summarizerClient,
		history:    historyStore,
		deadlines:  deadlines,
		logger:     logger,
	}
}

// Run executes the full pipeline for a validated query (spec.md §4.5
// "Algorithm (per request)", steps 2-9; step 1 validation is the
// caller's responsibility via model.Query.Validate).
func (o *Orchestrator) Run(ctx context.Context, q model.Query) (model.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, o.deadlines.Hard)
	defer cancel()

	requestID := generateRequestID()
	requestStart := time.Now()

	start := time.Now()
	features := o.acquirer.Acquire(ctx, q)
	telemetry.ObserveStageDuration("acquisition", time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return model.Response{}, ErrDeadlineExceeded
	}

	start = time.Now()
	verdict := scoring.Score(features, q, o.calibrator)
	telemetry.ObserveStageDuration("scoring", time.Since(start).Seconds())
	telemetry.ObserveCalibratorAdjustment(verdict.CalibrationAdjustment)

	start = time.Now()
	fin := financial.Evaluate(q, features.SolarIrradiance, o.finParams)
	telemetry.ObserveStageDuration("financial", time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return model.Response{}, ErrDeadlineExceeded
	}

	record := model.AnalysisRecord{
		ID:               requestID,
		CreatedAt:        time.Now(),
		Lat:              q.Lat,
		Lng:              q.Lng,
		SolarIrradiance:  features.SolarIrradiance,
		CloudCoverPct:    features.CloudCoverPct,
		SlopeDegrees:     features.SlopeDegrees,
		GridDistanceKM:   features.GridDistanceKM,
		Score:            verdict.Score,
		Grade:            verdict.Grade,
		SubScores:        verdict.SubScores,
		AnnualEnergyKWh:  fin.AnnualEnergyKWh,
		InstallationCost: fin.InstallationCost,
		PaybackYears:     float64(fin.PaybackYears),
		LifetimeProfit:   fin.LifetimeProfit,
	}

	// Step 6: concurrently request the narrative summary and feed the
	// calibrator observation — the calibrator write is ordered-before the
	// response return (spec.md §4.3/§5), so it is awaited in this group
	// rather than fired-and-forgotten. Persistence runs after the group,
	// once the summary it records is known.
	var summary summarizer.Result
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary = o.summarizer.Summarize(gCtx, o.deadlines.SummarizerTimeout, verdict, fin, features)
		telemetry.RecordSummarizerProvider(summary.Provider)
		return nil
	})
	g.Go(func() error {
		o.calibrator.Observe(q.Lat, q.Lng, verdict.Score)
		return nil
	})
	_ = g.Wait() // both goroutines above are infallible by construction

	record.AISummary = summary.Summary
	record.AIProvider = summary.Provider

	if o.history != nil {
		if _, err := o.history.Append(record); err != nil {
			o.logger.Warn("failed to persist analysis record", zap.Error(err), zap.String("request_id", requestID))
		}
	}

	if elapsed := time.Since(requestStart); o.deadlines.Soft > 0 && elapsed > o.deadlines.Soft {
		o.logger.Warn("request exceeded soft deadline",
			zap.Duration("elapsed", elapsed),
			zap.Duration("soft_deadline", o.deadlines.Soft),
			zap.String("request_id", requestID),
		)
	}

	return model.Response{
		Verdict:    verdict,
		Financial:  fin,
		Features:   features,
		AISummary:  summary.Summary,
		AIProvider: summary.Provider,
		RequestID:  requestID,
	}, nil
}

func generateRequestID() string {
	return "req_" + uuid.New().String()
}
