// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package models

import "slices"

// Songlist is an owned, ordered collection of song ids.
type Songlist struct {
	ID      int64   `json:"id"`
	OwnerID int64   `json:"owner_id"`
	Name    string  `json:"name"`
	Songs   []int64 `json:"songs,omitempty"`
}

// Contains reports whether songID is in the list.
func (s *Songlist) Contains(songID int64) bool {
	return slices.Contains(s.Songs, songID)
}

// Add appends songID if absent and reports whether the list changed.
func (s *Songlist) Add(songID int64) bool {
	if s.Contains(songID) {
		return false
	}
	s.Songs = append(s.Songs, songID)
	return true
}

// Remove deletes songID and reports whether the list changed.
func (s *Songlist) Remove(songID int64) bool {
	i := slices.Index(s.Songs, songID)
	if i < 0 {
		return false
	}
	s.Songs = slices.Delete(s.Songs, i, i+1)
	return true
}
