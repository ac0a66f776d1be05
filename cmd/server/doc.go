// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package main is the entry point for the TuneIsland server.

TuneIsland trains a matrix factorization model over users' plays, ratings,
collections and likes, blends it with tag, like, popularity and rating
signals, and stores a ranked list of song IDs on every user profile. An
HTTP API serves those lists and records the interactions that feed the
next training cycle.

# Application Architecture

	RootSupervisor ("tuneisland")
	├── DataSupervisor ("data-layer")
	│   ├── RecommendService (scheduled training)
	│   └── StoreGCService (Badger value log GC)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Storage: BadgerDB user, song and songlist stores
 4. Engine: hybrid scorer, plus the generative recommender when the LLM is enabled
 5. Supervisor Tree: Suture v4 process supervision
 6. HTTP Server: Chi router with middleware stack

# Configuration

	export RECOMMEND_STRATEGY=hybrid
	export RECOMMEND_TRAIN_INTERVAL=24h
	export STORAGE_PATH=/data/tuneisland
	export HTTP_PORT=8080
	./tuneisland

Generative mode:

	export RECOMMEND_STRATEGY=generative
	export LLM_ENABLED=true
	export LLM_URL=http://llm:8000/v1/completions
	./tuneisland

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. In-flight requests are
given the server shutdown timeout, a running training cycle observes the
cancellation, and the store is closed last.
*/
package main
