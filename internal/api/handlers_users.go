// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/tuneisland/internal/models"
)

// GetUser handles GET /api/v1/users/{userID}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := pathID(w, r, "userID", "INVALID_USER_ID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondStoreError(w, err, "user")
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}

// UpsertUser handles PUT /api/v1/users/{userID}
func (h *Handler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := pathID(w, r, "userID", "INVALID_USER_ID")
	if !ok {
		return
	}

	var req models.UserUpsertRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, created, err := h.users.Upsert(ctx, userID, req.Name)
	if err != nil {
		respondStoreError(w, err, "user")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, user, start)
}

// CollectSonglist handles POST /api/v1/users/{userID}/songlists/{songlistID}
// Collecting an already collected songlist is a no-op.
func (h *Handler) CollectSonglist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := pathID(w, r, "userID", "INVALID_USER_ID")
	if !ok {
		return
	}
	songlistID, ok := pathID(w, r, "songlistID", "INVALID_SONGLIST_ID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.Collect(ctx, userID, songlistID)
	if err != nil {
		respondStoreError(w, err, "collection")
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}
