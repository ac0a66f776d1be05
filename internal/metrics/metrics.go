// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training Metrics
	TrainingCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_cycles_total",
			Help: "Total number of training cycles by outcome",
		},
		[]string{"status"}, // "success", "error", "skipped"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of complete training cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800},
		},
	)

	TrainingEpochs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_best_epoch",
			Help: "Epoch of the factor snapshot kept by the last training cycle",
		},
	)

	TrainingRMSE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_rmse",
			Help: "Training RMSE of the factor model kept by the last cycle",
		},
	)

	TrainingUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_users",
			Help: "Number of users processed by the last training cycle",
		},
	)

	UserRecommendationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_user_failures_total",
			Help: "Total number of users whose recommendation list was cleared after a failure",
		},
	)

	StrategyFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_strategy_fallbacks_total",
			Help: "Total number of times a strategy fell back to a deterministic ordering",
		},
		[]string{"strategy", "fallback"},
	)

	// Read Path Metrics
	RecommendationReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_reads_total",
			Help: "Total number of recommendation reads by source",
		},
		[]string{"source"}, // "stored", "popular"
	)

	HotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_hot_cache_hits_total",
			Help: "Total number of hot song list cache hits",
		},
	)

	HotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_hot_cache_misses_total",
			Help: "Total number of hot song list cache misses",
		},
	)

	// Text Generation Metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of text generation requests",
		},
		[]string{"status"}, // "success", "error", "rejected"
	)

	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of text generation requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	LLMParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_parse_failures_total",
			Help: "Total number of text generation responses that yielded no usable ids",
		},
		[]string{"reason"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
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

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of key-value store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "entity"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of key-value store operation errors",
		},
		[]string{"operation", "entity"},
	)

	// API Metrics
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
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordTrainingCycle records the outcome of one training cycle.
func RecordTrainingCycle(status string, duration time.Duration) {
	TrainingCyclesTotal.WithLabelValues(status).Inc()
	if status != "skipped" {
		TrainingDuration.Observe(duration.Seconds())
	}
}

// RecordTrainingModel records the kept factor snapshot of a successful cycle.
func RecordTrainingModel(users, failed, epoch int, rmse float64) {
	TrainingUsers.Set(float64(users))
	TrainingEpochs.Set(float64(epoch))
	TrainingRMSE.Set(rmse)
	UserRecommendationFailures.Add(float64(failed))
}

// RecordStrategyFallback records a strategy falling back to a deterministic
// ordering.
func RecordStrategyFallback(strategy, fallback string) {
	StrategyFallbacks.WithLabelValues(strategy, fallback).Inc()
}

// RecordRecommendationRead records where a read path response came from.
func RecordRecommendationRead(source string) {
	RecommendationReads.WithLabelValues(source).Inc()
}

// RecordHotCache records a hot list cache lookup.
func RecordHotCache(hit bool) {
	if hit {
		HotCacheHits.Inc()
		return
	}
	HotCacheMisses.Inc()
}

// RecordLLMRequest records a text generation request.
func RecordLLMRequest(status string, duration time.Duration) {
	LLMRequestsTotal.WithLabelValues(status).Inc()
	LLMRequestDuration.Observe(duration.Seconds())
}

// RecordLLMParseFailure records a response that could not be used.
func RecordLLMParseFailure(reason string) {
	LLMParseFailures.WithLabelValues(reason).Inc()
}

// RecordStoreOperation records a key-value store operation.
func RecordStoreOperation(operation, entity string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, entity).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, entity).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
