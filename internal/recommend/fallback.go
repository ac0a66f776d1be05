// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"cmp"
	"slices"

	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend/algorithms"
)

// PopularityFallback returns the n most played songs, ties in input order.
// Nil entries are dropped.
func PopularityFallback(songs []*models.Song, n int) []*models.Song {
	return head(algorithms.RankByPlayCount(withoutNil(songs)), n)
}

// RatingFallback returns the n songs with the highest mean rating, then the
// highest play count. It replaces generative output when the text-generation
// call or its parse fails.
func RatingFallback(songs []*models.Song, n int) []*models.Song {
	out := withoutNil(songs)
	slices.SortStableFunc(out, func(a, b *models.Song) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(b.PlayCount, a.PlayCount)
	})
	return head(out, n)
}

// withoutNil returns a copy of songs with nil entries removed.
func withoutNil(songs []*models.Song) []*models.Song {
	out := make([]*models.Song, 0, len(songs))
	for _, s := range songs {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func head(songs []*models.Song, n int) []*models.Song {
	if n <= 0 {
		return nil
	}
	if len(songs) > n {
		return songs[:n]
	}
	return songs
}

// songIDs extracts ids preserving order.
func songIDs(songs []*models.Song) []int64 {
	out := make([]int64, len(songs))
	for i, s := range songs {
		out[i] = s.ID
	}
	return out
}
