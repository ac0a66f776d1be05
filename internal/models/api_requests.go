// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package models

// RecommendationsRequest holds the query of the recommendation read endpoint
// after defaults are applied.
type RecommendationsRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
	N      int   `json:"n" validate:"min=1,max=100"`
}

// PlayRequest records one play of a song.
type PlayRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// RateRequest submits a rating for a song.
type RateRequest struct {
	UserID int64    `json:"user_id" validate:"required,gt=0"`
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=5"`
}

// SonglistSongRequest adds a song to a songlist.
type SonglistSongRequest struct {
	SongID int64 `json:"song_id" validate:"required,gt=0"`
}

// SongUpsertRequest creates or replaces a catalog song. Counters and ratings
// are preserved when the song already exists.
type SongUpsertRequest struct {
	Name   string    `json:"name" validate:"required,max=200"`
	Singer string    `json:"singer" validate:"required,max=200"`
	Tags   []SongTag `json:"tags" validate:"max=17,dive,songtag"`
}

// UserUpsertRequest creates or renames a user.
type UserUpsertRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// SonglistUpsertRequest creates or renames a songlist.
type SonglistUpsertRequest struct {
	OwnerID int64  `json:"owner_id" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required,max=200"`
}
