// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/tuneisland/internal/logging"
	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/store"
)

// GetSong handles GET /api/v1/songs/{songID}
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songID, ok := pathID(w, r, "songID", "INVALID_SONG_ID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	song, err := h.songs.GetByID(ctx, songID)
	if err != nil {
		respondStoreError(w, err, "song")
		return
	}
	respondSuccess(w, http.StatusOK, song, start)
}

// UpsertSong handles PUT /api/v1/songs/{songID}
// Creates the song (201) or replaces its name, singer and tags (200).
func (h *Handler) UpsertSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songID, ok := pathID(w, r, "songID", "INVALID_SONG_ID")
	if !ok {
		return
	}

	var req models.SongUpsertRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	song, created, err := h.songs.Upsert(ctx, songID, req.Name, req.Singer, req.Tags)
	if err != nil {
		respondStoreError(w, err, "song")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, song, start)
}

// PlaySong handles POST /api/v1/songs/{songID}/play
// Increments the play count and records the song in the user's history.
func (h *Handler) PlaySong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songID, ok := pathID(w, r, "songID", "INVALID_SONG_ID")
	if !ok {
		return
	}

	var req models.PlayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	song, err := h.songs.RecordPlay(ctx, songID, req.UserID)
	if err != nil {
		respondStoreError(w, err, "play")
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int64("song_id", songID).
		Int64("user_id", req.UserID).
		Int64("play_count", song.PlayCount).
		Msg("play recorded")

	respondSuccess(w, http.StatusOK, song, start)
}

// RateSong handles POST /api/v1/songs/{songID}/rate
// Accepts one rating in 0..5 per user per song.
func (h *Handler) RateSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	songID, ok := pathID(w, r, "songID", "INVALID_SONG_ID")
	if !ok {
		return
	}

	var req models.RateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	song, err := h.songs.Rate(ctx, songID, req.UserID, *req.Rating)
	switch {
	case errors.Is(err, store.ErrAlreadyRated):
		respondError(w, http.StatusConflict, "ALREADY_RATED", "User has already rated this song", nil)
		return
	case errors.Is(err, store.ErrInvalidRating):
		respondError(w, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 0 and 5", nil)
		return
	case err != nil:
		respondStoreError(w, err, "rating")
		return
	}

	respondSuccess(w, http.StatusOK, song, start)
}
