// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package config provides centralized configuration management for TuneIsland.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML
file (CONFIG_PATH, config.yaml, /etc/tuneisland/config.yaml), then mapped
environment variables. Unmapped environment variables are ignored.

# Environment Variables

Recommendation engine:
  - RECOMMEND_FACTORS: latent dimension (default: 50)
  - RECOMMEND_LEARNING_RATE: SGD step (default: 0.005)
  - RECOMMEND_REGULARIZATION: L2 penalty (default: 0.015)
  - RECOMMEND_MAX_EPOCHS: epoch cap (default: 1000)
  - RECOMMEND_PATIENCE: early-stopping patience (default: 10)
  - RECOMMEND_SEED: factor initialization seed, 0 = random (default: 0)
  - RECOMMEND_WEIGHT_ML, _TAG, _LIKE, _POPULAR, _RATING: hybrid blend
    (default: 0.60, 0.20, 0.09, 0.10, 0.01; must sum to 1)
  - RECOMMEND_DEFAULT_COUNT: songs per user (default: 10)
  - RECOMMEND_STRATEGY: hybrid or generative (default: hybrid)
  - RECOMMEND_TRAIN_INTERVAL: schedule (default: 24h)
  - RECOMMEND_TRAIN_ON_STARTUP: train once at boot (default: false)

Text generation:
  - LLM_ENABLED, LLM_URL, LLM_API_KEY, LLM_TIMEOUT
  - LLM_MAX_TOKENS (default: 100), LLM_TEMPERATURE (default: 0.7)
  - LLM_RATE_LIMIT, LLM_RATE_BURST, LLM_CATALOG_LIMIT (default: 50)

Storage:
  - BADGER_PATH (default: /data/tuneisland), BADGER_IN_MEMORY
  - BADGER_SYNC_WRITES, BADGER_COMPRESSION, BADGER_GC_INTERVAL, BADGER_GC_RATIO

Server, cache and logging:
  - HTTP_HOST, HTTP_PORT (default: 8080), HTTP_TIMEOUT
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - HOT_CACHE_TTL (default: 10m), HOT_CACHE_SIZE (default: 30)
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

LoadWithKoanf validates the merged result and rejects non-positive
hyperparameters, weights that do not sum to 1 within 1e-9, an unknown
strategy, a generative strategy without LLM_URL, an invalid port and an
unknown log level.
*/
package config
