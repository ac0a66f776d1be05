// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tuneisland/internal/middleware"
)

// Router owns the handler and middleware factories.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil config uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chimiddleware.Compress(5, "application/json"))

		// ========================
		// Health Endpoints
		// ========================
		r.Get("/health/live", router.handler.HealthLive)
		r.Get("/health/ready", router.handler.HealthReady)

		// ========================
		// Users
		// ========================
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", router.handler.GetUser)
			r.Put("/", router.handler.UpsertUser)
			r.Get("/recommendations", router.handler.GetRecommendations)
			r.Post("/songlists/{songlistID}", router.handler.CollectSonglist)
		})

		// ========================
		// Songs
		// ========================
		r.Get("/songs/hot", router.handler.GetHotSongs)
		r.Route("/songs/{songID}", func(r chi.Router) {
			r.Get("/", router.handler.GetSong)
			r.Put("/", router.handler.UpsertSong)
			r.Post("/play", router.handler.PlaySong)
			r.Post("/rate", router.handler.RateSong)
		})

		// ========================
		// Songlists
		// ========================
		r.Route("/songlists/{songlistID}", func(r chi.Router) {
			r.Get("/", router.handler.GetSonglist)
			r.Put("/", router.handler.UpsertSonglist)
			r.Post("/songs", router.handler.AddSonglistSong)
			r.Delete("/songs/{songID}", router.handler.RemoveSonglistSong)
		})

		// ========================
		// Training
		// ========================
		r.Route("/admin/train", func(r chi.Router) {
			r.Post("/", router.handler.TriggerTraining)
			r.Get("/status", router.handler.GetTrainingStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
