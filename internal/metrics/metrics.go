// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analysis run metrics
	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_analysis_runs_total",
			Help: "Total number of analysis runs by outcome",
		},
		[]string{"status"}, // "success", "cancelled", "invalid", "error"
	)

	AnalysisRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cratedigger_analysis_run_duration_seconds",
			Help:    "Duration of analysis runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	AnalysisListingsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cratedigger_listings_processed_total",
			Help: "Total number of listings fed into analysis runs",
		},
	)

	// Item matcher metrics
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_matches_total",
			Help: "Listings attached to an existing canonical item by confidence band",
		},
		[]string{"band"},
	)

	CanonicalItemsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cratedigger_canonical_items_created_total",
			Help: "Total number of canonical items created",
		},
	)

	ListingsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_listings_excluded_total",
			Help: "Listings left out of a run's canonical item set",
		},
		[]string{"reason"}, // "match_error", "condition"
	)

	// Recommendation metrics
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_recommendations_generated_total",
			Help: "Recommendations emitted by type",
		},
		[]string{"type"},
	)

	RecommendationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cratedigger_recommendations_dropped_total",
			Help: "Recommendations dropped for referencing a seller or item absent from the run",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cratedigger_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Event processing metrics
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_events_processed_total",
			Help: "Events handled by the event router by topic and outcome",
		},
		[]string{"topic", "status"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_events_published_total",
			Help: "Events published by topic and outcome",
		},
		[]string{"topic", "status"},
	)

	// Storage metrics
	StoreWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cratedigger_store_writes_total",
			Help: "Run snapshot writes by outcome",
		},
		[]string{"status"},
	)

	StoreWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cratedigger_store_write_duration_seconds",
			Help:    "Duration of run snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cratedigger_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAnalysisRun records the outcome and duration of one run.
func RecordAnalysisRun(status string, duration time.Duration, listings int) {
	AnalysisRunsTotal.WithLabelValues(status).Inc()
	AnalysisRunDuration.Observe(duration.Seconds())
	AnalysisListingsProcessed.Add(float64(listings))
}

// RecordMatches adds per-band attach counts and the number of created items.
func RecordMatches(bands map[string]int, created int) {
	for band, n := range bands {
		MatchesTotal.WithLabelValues(band).Add(float64(n))
	}
	CanonicalItemsCreated.Add(float64(created))
}

// RecordExcluded records listings left out of a run.
func RecordExcluded(reason string, n int) {
	if n > 0 {
		ListingsExcluded.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordRecommendations records emitted counts by type and dropped totals.
func RecordRecommendations(byType map[string]int, dropped int) {
	for t, n := range byType {
		RecommendationsGenerated.WithLabelValues(t).Add(float64(n))
	}
	if dropped > 0 {
		RecommendationsDropped.Add(float64(dropped))
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEventProcessed records a consumed event.
func RecordEventProcessed(topic string, err error) {
	EventsProcessed.WithLabelValues(topic, statusLabel(err)).Inc()
}

// RecordEventPublished records a published event.
func RecordEventPublished(topic string, err error) {
	EventsPublished.WithLabelValues(topic, statusLabel(err)).Inc()
}

// RecordStoreWrite records a run snapshot write.
func RecordStoreWrite(duration time.Duration, err error) {
	StoreWritesTotal.WithLabelValues(statusLabel(err)).Inc()
	StoreWriteDuration.Observe(duration.Seconds())
}

// SetCircuitBreakerState publishes a breaker's numeric state.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
