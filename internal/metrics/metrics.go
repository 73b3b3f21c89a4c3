// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

// Package metrics holds the Prometheus collectors for the engine, the
// backend data source and the HTTP layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine build metrics
	EngineInitializations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumeris_engine_initializations_total",
			Help: "Total number of engine generation builds",
		},
		[]string{"source", "result"}, // source: "trained", "restored"; result: "success", "error"
	)

	EngineBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumeris_engine_build_phase_duration_seconds",
			Help:    "Duration of each generation build phase in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"phase"}, // "catalog", "features", "history", "training", "total"
	)

	EngineGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lumeris_engine_generation",
			Help: "Version number of the generation currently serving",
		},
	)

	CatalogSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lumeris_catalog_entries",
			Help: "Entries in the serving catalog",
		},
		[]string{"kind"}, // "games", "pools", "users", "training_rows"
	)

	// Read path metrics
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumeris_recommendations_total",
			Help: "Recommendation requests by strategy",
		},
		[]string{"strategy"}, // "hybrid", "popularity"
	)

	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumeris_predictions_total",
			Help: "Pool prediction requests by outcome",
		},
		[]string{"result"}, // "ok", "not_found", "unavailable"
	)

	PredictionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumeris_prediction_cache_total",
			Help: "Batch forecast cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Backend data source metrics
	UpstreamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumeris_upstream_fetches_total",
			Help: "Backend fetches by resource and outcome",
		},
		[]string{"resource", "result"}, // result: "success", "error", "empty", "fallback"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// State persistence
	SnapshotSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumeris_snapshot_saves_total",
			Help: "Engine state snapshots written to the store",
		},
		[]string{"result"},
	)

	SnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lumeris_snapshot_bytes",
			Help: "Size of the last saved snapshot in bytes",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordBuildPhase observes how long one build phase took.
func RecordBuildPhase(phase string, d time.Duration) {
	EngineBuildDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordInitialization counts a build attempt.
func RecordInitialization(source string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EngineInitializations.WithLabelValues(source, result).Inc()
}

// UpdateGeneration publishes the serving generation's shape.
func UpdateGeneration(version int64, games, pools, users, rows int) {
	EngineGeneration.Set(float64(version))
	CatalogSize.WithLabelValues("games").Set(float64(games))
	CatalogSize.WithLabelValues("pools").Set(float64(pools))
	CatalogSize.WithLabelValues("users").Set(float64(users))
	CatalogSize.WithLabelValues("training_rows").Set(float64(rows))
}

// RecordUpstreamFetch counts a backend fetch outcome.
func RecordUpstreamFetch(resource, result string) {
	UpstreamFetches.WithLabelValues(resource, result).Inc()
}

// RecordPredictionCache counts a batch forecast cache lookup.
func RecordPredictionCache(hit bool) {
	if hit {
		PredictionCache.WithLabelValues("hit").Inc()
		return
	}
	PredictionCache.WithLabelValues("miss").Inc()
}

// RecordSnapshotSave counts a snapshot write.
func RecordSnapshotSave(size int, err error) {
	if err != nil {
		SnapshotSaves.WithLabelValues("error").Inc()
		return
	}
	SnapshotSaves.WithLabelValues("success").Inc()
	SnapshotBytes.Set(float64(size))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
