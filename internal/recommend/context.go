// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/tuneisland/internal/models"
)

// RecommendationContext is a per-user snapshot computed once per scoring pass.
// It is never shared between users.
type RecommendationContext struct {
	// TagPreferences maps a tag to the fraction of the user's tagged history
	// entries carrying it.
	TagPreferences map[models.SongTag]float64

	// Liked is the flattened song membership of the user's collected songlists.
	Liked map[int64]struct{}
}

// IsLiked reports whether songID is in the liked set.
func (rc *RecommendationContext) IsLiked(songID int64) bool {
	_, ok := rc.Liked[songID]
	return ok
}

// NewRecommendationContext builds a context from a user's play history.
//
// A tag's preference is the fraction of resolved history entries bearing it.
// Every entry found in the catalog counts toward the denominator, tagged or
// not; unknown ids are skipped.
func NewRecommendationContext(history []int64, catalog map[int64]*models.Song, liked map[int64]struct{}) *RecommendationContext {
	rc := &RecommendationContext{
		TagPreferences: make(map[models.SongTag]float64),
		Liked:          liked,
	}
	if rc.Liked == nil {
		rc.Liked = map[int64]struct{}{}
	}

	resolved := 0
	for _, songID := range history {
		song, ok := catalog[songID]
		if !ok || song == nil {
			continue
		}
		resolved++
		for _, tag := range song.Tags {
			rc.TagPreferences[tag]++
		}
	}
	if resolved == 0 {
		return rc
	}
	for tag, n := range rc.TagPreferences {
		rc.TagPreferences[tag] = n / float64(resolved)
	}
	return rc
}

// ResolveLiked flattens the songs of every songlist the user collected.
// Songlists that no longer exist are skipped; other store errors are returned
// together with the partial set.
func ResolveLiked(ctx context.Context, store SonglistStore, user *models.UserProfile) (map[int64]struct{}, error) {
	liked := make(map[int64]struct{})
	if store == nil {
		return liked, nil
	}

	var errs []error
	for _, listID := range user.CollectedSonglists {
		list, err := store.GetByID(ctx, listID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("songlist %d: %w", listID, err))
			continue
		}
		for _, songID := range list.Songs {
			liked[songID] = struct{}{}
		}
	}
	return liked, errors.Join(errs...)
}
