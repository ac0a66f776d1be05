// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package algorithms

import (
	"slices"

	"github.com/tomtom215/tuneisland/internal/models"
)

// Popularity scores songs by global play count, normalized to [0, 1] by the
// most played song in the fitted catalog.
//
// The score is computed as:
//
//	score(song) = playCount(song) / max(playCount)
//
// It is both the popularity term of the hybrid score and the ordering used
// when personalized recommendations are unavailable.
type Popularity struct {
	maxPlays int64
	ranked   []*models.Song
}

// NewPopularity creates an unfitted popularity model. Score returns 0 until
// Fit is called.
func NewPopularity() *Popularity {
	return &Popularity{}
}

// Fit records the catalog's maximum play count and ranking.
func (p *Popularity) Fit(songs []*models.Song) {
	p.maxPlays = 0
	for _, s := range songs {
		p.maxPlays = max(p.maxPlays, s.PlayCount)
	}
	p.ranked = RankByPlayCount(songs)
}

// MaxPlays returns the largest play count seen by Fit.
func (p *Popularity) MaxPlays() int64 {
	return p.maxPlays
}

// Score returns the normalized popularity of s.
func (p *Popularity) Score(s *models.Song) float64 {
	if p.maxPlays <= 0 || s == nil {
		return 0
	}
	return float64(s.PlayCount) / float64(p.maxPlays)
}

// TopK returns the K most played songs from the fitted catalog.
func (p *Popularity) TopK(k int) []*models.Song {
	if k <= 0 || len(p.ranked) == 0 {
		return nil
	}
	k = min(k, len(p.ranked))
	return slices.Clone(p.ranked[:k])
}

// RankByPlayCount returns songs ordered by descending play count. Ties keep
// their input order. The input slice is not modified.
func RankByPlayCount(songs []*models.Song) []*models.Song {
	out := slices.Clone(songs)
	slices.SortStableFunc(out, func(a, b *models.Song) int {
		switch {
		case a.PlayCount > b.PlayCount:
			return -1
		case a.PlayCount < b.PlayCount:
			return 1
		default:
			return 0
		}
	})
	return out
}
