// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package models

import (
	"maps"
	"slices"
)

// MaxHistory bounds UserProfile.History.
const MaxHistory = 300

// UserProfile holds a user's implicit and explicit signals.
type UserProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// History is most-recent-first and may contain the same song repeatedly.
	History []int64 `json:"history,omitempty"`

	// CollectedSonglists are the songlists whose songs count as liked.
	CollectedSonglists []int64 `json:"collected_songlists,omitempty"`

	// Ratings maps song id to the rating this user gave it.
	Ratings map[int64]float64 `json:"ratings,omitempty"`

	// RecommendedItems is replaced wholesale by each training cycle.
	RecommendedItems []int64 `json:"recommended_items,omitempty"`
}

// RecordPlay prepends songID to the history, dropping the oldest entries
// beyond MaxHistory.
func (u *UserProfile) RecordPlay(songID int64) {
	history := make([]int64, 0, min(len(u.History)+1, MaxHistory))
	history = append(history, songID)
	for _, id := range u.History {
		if len(history) == MaxHistory {
			break
		}
		history = append(history, id)
	}
	u.History = history
}

// Collect adds a songlist to the collected set. It returns false when the
// songlist was already collected.
func (u *UserProfile) Collect(songlistID int64) bool {
	if slices.Contains(u.CollectedSonglists, songlistID) {
		return false
	}
	u.CollectedSonglists = append(u.CollectedSonglists, songlistID)
	return true
}

// RatingFor returns the user's own rating for songID.
func (u *UserProfile) RatingFor(songID int64) (float64, bool) {
	r, ok := u.Ratings[songID]
	return r, ok
}

// Clone returns a deep copy.
func (u *UserProfile) Clone() *UserProfile {
	c := *u
	c.History = slices.Clone(u.History)
	c.CollectedSonglists = slices.Clone(u.CollectedSonglists)
	c.Ratings = maps.Clone(u.Ratings)
	c.RecommendedItems = slices.Clone(u.RecommendedItems)
	return &c
}
