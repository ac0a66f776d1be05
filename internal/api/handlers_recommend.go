// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/tuneisland/internal/logging"
	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend"
)

// GetRecommendations handles GET /api/v1/users/{userID}/recommendations
// Returns up to n songs from the user's stored list, or the most played songs
// when that list is empty, unresolvable, or the user is unknown.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := pathID(w, r, "userID", "INVALID_USER_ID")
	if !ok {
		return
	}

	req := models.RecommendationsRequest{
		UserID: userID,
		N:      h.config.Recommend.DefaultCount,
	}
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondAPIError(w, http.StatusBadRequest, &models.APIError{
				Code:    "VALIDATION_ERROR",
				Message: "n must be an integer",
				Details: map[string]interface{}{"field": "n", "tag": "integer", "value": raw},
			}, nil)
			return
		}
		req.N = n
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	songs, err := h.engine.GetRecommendedItems(ctx, req.UserID, req.N)
	if err != nil {
		respondStoreError(w, err, "recommendations")
		return
	}
	if songs == nil {
		songs = []*models.Song{}
	}

	respondSuccess(w, http.StatusOK, models.RecommendationsResponse{
		UserID: req.UserID,
		Count:  len(songs),
		Songs:  songs,
	}, start)
}

// GetHotSongs handles GET /api/v1/songs/hot
func (h *Handler) GetHotSongs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	songs, err := h.engine.HotSongs(ctx)
	if err != nil {
		respondStoreError(w, err, "hot songs")
		return
	}
	if songs == nil {
		songs = []*models.Song{}
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"songs": songs,
		"count": len(songs),
	}, start)
}

// TriggerTraining handles POST /api/v1/admin/train
// Starts a training cycle in the background and returns 202, or 409 when a
// cycle is already running.
func (h *Handler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.engine.Status().IsTraining {
		respondError(w, http.StatusConflict, "TRAINING_IN_PROGRESS", "A training cycle is already running", nil)
		return
	}

	logger := *logging.Ctx(r.Context())
	timeout := h.config.Recommend.TrainTimeout
	done := h.trainDone

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := h.engine.Train(ctx)
		switch {
		case err == nil:
			logger.Info().Msg("manual training cycle complete")
		case errors.Is(err, recommend.ErrTrainingInProgress):
			logger.Info().Msg("manual training skipped, cycle already running")
		case errors.Is(err, recommend.ErrDataEmpty):
			logger.Info().Msg("manual training skipped, no data")
		default:
			logger.Error().Err(err).Msg("manual training cycle failed")
		}
		if done != nil {
			done <- err
		}
	}()

	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"started": true,
	}, start)
}

// GetTrainingStatus handles GET /api/v1/admin/train/status
func (h *Handler) GetTrainingStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.engine.Status(), time.Now())
}
