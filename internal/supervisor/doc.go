// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package supervisor provides process supervision for TuneIsland using suture v4.

Long-running services are organized into two layers so that a failing
training scheduler never takes the HTTP API down with it:

	RootSupervisor ("tuneisland")
	├── DataSupervisor ("data-layer")
	│   ├── RecommendService (training scheduler)
	│   └── StoreGCService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with exponential backoff. Each layer counts its
own failures, and supervisor events are logged through the sutureslog
adapter on the process slog logger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRecommendService(engine, recCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), 10*time.Second, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

On shutdown, UnstoppedServiceReport lists services that ignored context
cancellation within the configured ShutdownTimeout.
*/
package supervisor
