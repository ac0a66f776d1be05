// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package metrics provides Prometheus instrumentation for the recommendation
service.

All collectors are registered on the default registry at package init via
promauto and exposed by the API router at /metrics.

# Metric Groups

  - recommend_training_*: cycle outcomes, duration, kept RMSE and epoch
  - recommend_user_failures_total: users whose list was cleared
  - recommend_strategy_fallbacks_total: generative or hybrid fallbacks
  - recommend_reads_total, recommend_hot_cache_*: read path sources
  - llm_*: text generation latency, outcomes and unusable responses
  - circuit_breaker_*: state of the text generation circuit breaker
  - store_*: key-value store latency and errors
  - api_*: HTTP request counts and latency

# Example Alerts

	groups:
	  - name: tuneisland
	    rules:
	      - alert: TrainingFailing
	        expr: increase(recommend_training_cycles_total{status="error"}[2d]) > 1
	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state{name="llm"} == 2
	        for: 10m
*/
package metrics
