// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/tuneisland/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the store is open; 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	storeOpen := h.db != nil && h.db.Ping() == nil
	training := h.engine.Status()

	statusCode := http.StatusOK
	status := "ready"
	if !storeOpen {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	var lastTrained *time.Time
	if !training.LastTrainedAt.IsZero() {
		lastTrained = &training.LastTrainedAt
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"store_open":      storeOpen,
			"is_training":     training.IsTraining,
			"last_trained_at": lastTrained,
			"ready_to_serve":  storeOpen,
			"uptime":          time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
