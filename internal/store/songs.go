// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend"
	"github.com/tomtom215/tuneisland/internal/recommend/algorithms"
)

const entitySong = "song"

// SongStore persists the song catalog and applies plays and ratings.
type SongStore struct {
	d     *DB
	users *UserStore
}

var _ recommend.ItemStore = (*SongStore)(nil)

// NewSongStore creates a SongStore on d.
func NewSongStore(d *DB) *SongStore {
	return &SongStore{d: d, users: NewUserStore(d)}
}

// GetAll returns every song ordered by id.
func (s *SongStore) GetAll(ctx context.Context) ([]*models.Song, error) {
	start := time.Now()
	songs, err := listPrefix[models.Song](ctx, s.d, songKeyPrefix)
	observe("get_all", entitySong, start, err)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	slices.SortFunc(songs, func(a, b *models.Song) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return songs, nil
}

// GetByID returns one song or models.ErrNotFound.
func (s *SongStore) GetByID(ctx context.Context, id int64) (*models.Song, error) {
	start := time.Now()
	song, err := get[models.Song](ctx, s.d, entityKey(songKeyPrefix, id))
	observe("get", entitySong, start, err)
	if err != nil {
		return nil, fmt.Errorf("song %d: %w", id, err)
	}
	return song, nil
}

// FindMostPlayed returns up to limit songs by descending play count, ties
// in id order. A non-positive limit returns the whole catalog.
func (s *SongStore) FindMostPlayed(ctx context.Context, limit int) ([]*models.Song, error) {
	songs, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	ranked := algorithms.RankByPlayCount(songs)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Save writes the whole song, replacing any existing entry.
func (s *SongStore) Save(ctx context.Context, song *models.Song) error {
	start := time.Now()
	key := entityKey(songKeyPrefix, song.ID)

	unlock := s.d.locks.Lock(string(key))
	err := put(ctx, s.d, key, song)
	unlock()

	observe("save", entitySong, start, err)
	return err
}

// Upsert creates the song or replaces its descriptive fields, keeping play
// count and ratings of an existing entry.
func (s *SongStore) Upsert(ctx context.Context, id int64, name, singer string, tags []models.SongTag) (*models.Song, bool, error) {
	start := time.Now()
	song, created, err := upsert(ctx, s.d, entityKey(songKeyPrefix, id), func(song *models.Song, _ bool) {
		song.ID = id
		song.Name = name
		song.Singer = singer
		song.Tags = slices.Clone(tags)
	})
	observe("upsert", entitySong, start, err)
	if err != nil {
		return nil, false, fmt.Errorf("song %d: %w", id, err)
	}
	return song, created, nil
}

// Delete removes a song. Recommendation lists that still reference it are
// resolved lazily by the read path.
func (s *SongStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	key := entityKey(songKeyPrefix, id)

	unlock := s.d.locks.Lock(string(key))
	defer unlock()

	err := s.d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	observe("delete", entitySong, start, err)
	return err
}

// RecordPlay increments the song's play count and prepends it to the user's
// history. The song and user locks are taken one after the other.
func (s *SongStore) RecordPlay(ctx context.Context, songID, userID int64) (*models.Song, error) {
	start := time.Now()

	ok, err := s.users.userExists(userID)
	if err == nil && !ok {
		err = fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		observe("play", entitySong, start, err)
		return nil, err
	}

	song, err := mutate(ctx, s.d, entityKey(songKeyPrefix, songID), func(song *models.Song) error {
		song.PlayCount++
		return nil
	})
	if err != nil {
		observe("play", entitySong, start, err)
		return nil, fmt.Errorf("song %d: %w", songID, err)
	}

	err = s.users.recordHistory(ctx, userID, songID)
	observe("play", entitySong, start, err)
	if err != nil {
		return nil, fmt.Errorf("record history for user %d: %w", userID, err)
	}
	return song, nil
}

// Rate records a user's rating of a song. The rating must lie in
// 0..models.MaxRating and each user may rate a song once; the song's mean is
// updated incrementally.
func (s *SongStore) Rate(ctx context.Context, songID, userID int64, rating float64) (*models.Song, error) {
	if rating < 0 || rating > models.MaxRating {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRating, rating)
	}
	start := time.Now()

	ok, err := s.users.userExists(userID)
	if err == nil && !ok {
		err = fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		observe("rate", entitySong, start, err)
		return nil, err
	}

	song, err := mutate(ctx, s.d, entityKey(songKeyPrefix, songID), func(song *models.Song) error {
		if song.RatedByUser(userID) {
			return ErrAlreadyRated
		}
		total := song.Rating*float64(song.RatingCount) + rating
		song.RatingCount++
		song.Rating = total / float64(song.RatingCount)
		song.RatedBy = append(song.RatedBy, userID)
		return nil
	})
	if err != nil {
		observe("rate", entitySong, start, err)
		return nil, fmt.Errorf("song %d: %w", songID, err)
	}

	err = s.users.recordRating(ctx, userID, songID, rating)
	observe("rate", entitySong, start, err)
	if err != nil {
		return nil, fmt.Errorf("record rating for user %d: %w", userID, err)
	}
	return song, nil
}
