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

// GetSonglist handles GET /api/v1/songlists/{songlistID}
func (h *Handler) GetSonglist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songlistID, ok := pathID(w, r, "songlistID", "INVALID_SONGLIST_ID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.songlists.GetByID(ctx, songlistID)
	if err != nil {
		respondStoreError(w, err, "songlist")
		return
	}
	respondSuccess(w, http.StatusOK, list, start)
}

// UpsertSonglist handles PUT /api/v1/songlists/{songlistID}
func (h *Handler) UpsertSonglist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songlistID, ok := pathID(w, r, "songlistID", "INVALID_SONGLIST_ID")
	if !ok {
		return
	}

	var req models.SonglistUpsertRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, created, err := h.songlists.Upsert(ctx, songlistID, req.OwnerID, req.Name)
	if err != nil {
		respondStoreError(w, err, "songlist")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, list, start)
}

// AddSonglistSong handles POST /api/v1/songlists/{songlistID}/songs
func (h *Handler) AddSonglistSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songlistID, ok := pathID(w, r, "songlistID", "INVALID_SONGLIST_ID")
	if !ok {
		return
	}

	var req models.SonglistSongRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.songlists.AddSong(ctx, songlistID, req.SongID)
	if err != nil {
		respondStoreError(w, err, "songlist")
		return
	}
	respondSuccess(w, http.StatusOK, list, start)
}

// RemoveSonglistSong handles DELETE /api/v1/songlists/{songlistID}/songs/{songID}
func (h *Handler) RemoveSonglistSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songlistID, ok := pathID(w, r, "songlistID", "INVALID_SONGLIST_ID")
	if !ok {
		return
	}
	songID, ok := pathID(w, r, "songID", "INVALID_SONG_ID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.songlists.RemoveSong(ctx, songlistID, songID)
	if err != nil {
		respondStoreError(w, err, "songlist")
		return
	}
	respondSuccess(w, http.StatusOK, list, start)
}
