// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package api provides the HTTP interface of TuneIsland.

Routes are served by chi under /api/v1 and every response uses the
models.APIResponse envelope:

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	GET    /api/v1/users/{userID}
	PUT    /api/v1/users/{userID}
	GET    /api/v1/users/{userID}/recommendations?n=10
	POST   /api/v1/users/{userID}/songlists/{songlistID}
	GET    /api/v1/songs/hot
	GET    /api/v1/songs/{songID}
	PUT    /api/v1/songs/{songID}
	POST   /api/v1/songs/{songID}/play
	POST   /api/v1/songs/{songID}/rate
	GET    /api/v1/songlists/{songlistID}
	PUT    /api/v1/songlists/{songlistID}
	POST   /api/v1/songlists/{songlistID}/songs
	DELETE /api/v1/songlists/{songlistID}/songs/{songID}
	POST   /api/v1/admin/train
	GET    /api/v1/admin/train/status
	GET    /metrics

The recommendation read never fails for a missing or empty stored list; it
degrades to the most played songs. Request bodies are validated with the
validation package and rejected with a VALIDATION_ERROR envelope.

Global middleware, in order: request id and request logger, real IP, panic
recovery, CORS, Prometheus instrumentation. /api/v1 additionally carries a
per-IP rate limit (go-chi/httprate).
*/
package api
