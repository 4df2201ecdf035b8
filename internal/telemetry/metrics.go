// Package telemetry wires Prometheus metrics for the analysis pipeline,
// modelled directly on packages/llm-router/metrics.go's promauto-vector
// style, generalized from LLM request/token/cost metrics to provider
// acquisition, pipeline stage latency, and calibrator adjustment metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_placement_provider_calls_total",
		Help: "Total external provider calls by provider and outcome",
	}, []string{"provider", "outcome"})

	pipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solar_placement_pipeline_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	calibratorAdjustment = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solar_placement_calibrator_adjustment",
		Help:    "Distribution of applied calibration adjustments",
		Buckets: prometheus.LinearBuckets(-10, 2, 11),
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solar_placement_feature_cache_hits_total",
		Help: "Total feature cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solar_placement_feature_cache_misses_total",
		Help: "Total feature cache misses",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_placement_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solar_placement_http_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	summarizerProvider = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_placement_summarizer_provider_total",
		Help: "Which summarizer tier answered each request",
	}, []string{"provider"})
)

// RecordProviderCall records one external provider call outcome
// ("live", "climatology", "fallback").
func RecordProviderCall(provider, outcome string) {
	providerCalls.WithLabelValues(provider, outcome).Inc()
}

// ObserveStageDuration records how long a named pipeline stage took.
func ObserveStageDuration(stage string, seconds float64) {
	pipelineStageDuration.WithLabelValues(stage).Observe(seconds)
}

// ObserveCalibratorAdjustment records an applied calibration delta.
func ObserveCalibratorAdjustment(delta float64) {
	calibratorAdjustment.Observe(delta)
}

// RecordCacheHit/RecordCacheMiss track the feature cache's effectiveness.
func RecordCacheHit()  { cacheHits.Inc() }
func RecordCacheMiss() { cacheMisses.Inc() }

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordSummarizerProvider records which summarizer tier answered.
func RecordSummarizerProvider(provider string) {
	summarizerProvider.WithLabelValues(provider).Inc()
}
