// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package services provides suture.Service wrappers for TuneIsland's
long-running components.

  - RecommendService: the training scheduler. Optionally trains on startup,
    then on every TrainInterval tick, each cycle bounded by TrainTimeout.
    Empty data and overlapping cycles are logged as skipped; other failures
    are logged and retried on the next tick, so the service itself only
    returns on shutdown.
  - StoreGCService: periodic Badger value log garbage collection, plus one
    pass after every completed training cycle.
  - HTTPServerService: binds the API address and serves the chi router,
    shutting down gracefully on cancellation.

Each service implements fmt.Stringer so suture log events carry its name.

	tree.AddDataService(services.NewRecommendService(engine, services.RecommendServiceConfig{
	    TrainOnStartup: cfg.Recommend.TrainOnStartup,
	    TrainInterval:  cfg.Recommend.TrainInterval,
	    TrainTimeout:   cfg.Recommend.TrainTimeout,
	}, logger))
*/
package services
