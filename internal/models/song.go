// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package models

import (
	"errors"
	"slices"
)

// ErrNotFound is returned by stores when an entity does not exist.
var ErrNotFound = errors.New("not found")

// MaxRating is the upper bound of a single user rating.
const MaxRating = 5.0

// SongTag is a categorical label from a fixed vocabulary.
type SongTag string

// Genre, mood and scene tags.
const (
	TagPop        SongTag = "POP"
	TagRock       SongTag = "ROCK"
	TagRap        SongTag = "RAP"
	TagRnB        SongTag = "RNB"
	TagClassical  SongTag = "CLASSICAL"
	TagFolk       SongTag = "FOLK"
	TagElectronic SongTag = "ELECTRONIC"

	TagHappy        SongTag = "HAPPY"
	TagSad          SongTag = "SAD"
	TagRelaxed      SongTag = "RELAXED"
	TagMotivational SongTag = "MOTIVATIONAL"
	TagRomantic     SongTag = "ROMANTIC"

	TagWorkout SongTag = "WORKOUT"
	TagStudy   SongTag = "STUDY"
	TagDriving SongTag = "DRIVING"
	TagParty   SongTag = "PARTY"
	TagSleep   SongTag = "SLEEP"
)

// AllTags lists the tag vocabulary in declaration order.
var AllTags = []SongTag{
	TagPop, TagRock, TagRap, TagRnB, TagClassical, TagFolk, TagElectronic,
	TagHappy, TagSad, TagRelaxed, TagMotivational, TagRomantic,
	TagWorkout, TagStudy, TagDriving, TagParty, TagSleep,
}

// Valid reports whether t belongs to the tag vocabulary.
func (t SongTag) Valid() bool {
	return slices.Contains(AllTags, t)
}

// Song is a catalog item.
//
// Rating is the mean of all submitted ratings and is only meaningful when
// RatingCount > 0. PlayCount never decreases.
type Song struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Singer      string    `json:"singer"`
	Tags        []SongTag `json:"tags,omitempty"`
	PlayCount   int64     `json:"play_count"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	RatedBy     []int64   `json:"rated_by,omitempty"`
}

// HasRating reports whether at least one user rated the song.
func (s *Song) HasRating() bool {
	return s.RatingCount > 0
}

// RatedByUser reports whether userID has already rated the song.
func (s *Song) RatedByUser(userID int64) bool {
	return slices.Contains(s.RatedBy, userID)
}

// Clone returns a deep copy.
func (s *Song) Clone() *Song {
	c := *s
	c.Tags = slices.Clone(s.Tags)
	c.RatedBy = slices.Clone(s.RatedBy)
	return &c
}
