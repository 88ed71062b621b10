// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package metrics registers the Prometheus collectors for Aromatch.
//
// Instrumented areas:
//   - API endpoint latency and throughput
//   - Scorer and fusion performance
//   - Embedding API calls and cache efficiency
//   - Scenario generation fallbacks
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Engine Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	ScorerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_scorer_duration_seconds",
			Help:    "Duration of individual scorer passes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scorer"}, // "lexical", "semantic"
	)

	FusionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_fusion_fallbacks_total",
			Help: "Total number of score fusions that fell back to a single scorer",
		},
	)

	DiversityRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_diversity_retries_total",
			Help: "Total number of diversity validation failures that triggered a re-recommendation",
		},
	)

	ResponseCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_response_cache_hits_total",
			Help: "Total number of recommendation response cache hits",
		},
	)

	ResponseCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_response_cache_misses_total",
			Help: "Total number of recommendation response cache misses",
		},
	)

	// Embedding Metrics
	EmbeddingRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_request_duration_seconds",
			Help:    "Duration of embedding API calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	EmbeddingRequestErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_request_errors_total",
			Help: "Total number of failed embedding API calls",
		},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_misses_total",
			Help: "Total number of embedding cache misses",
		},
	)

	// Scenario Generation Metrics
	ScenarioGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_generations_total",
			Help: "Total number of scenario generations by outcome",
		},
		[]string{"outcome"}, // "ok", "fallback"
	)

	ScenarioGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scenario_generation_duration_seconds",
			Help:    "Duration of scenario generation calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordScorerPass records the duration of a single scorer pass.
func RecordScorerPass(scorer string, duration time.Duration) {
	ScorerDuration.WithLabelValues(scorer).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
