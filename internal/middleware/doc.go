// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package middleware provides HTTP middleware for the TuneIsland API.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and attaches it, together
    with a request-scoped logger, to the request context
  - PrometheusMetrics: request count, latency and in-flight instrumentation,
    labelled by the matched chi route pattern

Both are plain func(http.Handler) http.Handler and mount with chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Handlers then log through logging.Ctx(r.Context()) to carry the request id.
*/
package middleware
