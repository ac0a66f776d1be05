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

	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend"
)

const entitySonglist = "songlist"

// SonglistStore persists songlists.
type SonglistStore struct {
	d *DB
}

var _ recommend.SonglistStore = (*SonglistStore)(nil)

// NewSonglistStore creates a SonglistStore on d.
func NewSonglistStore(d *DB) *SonglistStore {
	return &SonglistStore{d: d}
}

// GetAll returns every songlist ordered by id.
func (s *SonglistStore) GetAll(ctx context.Context) ([]*models.Songlist, error) {
	start := time.Now()
	lists, err := listPrefix[models.Songlist](ctx, s.d, songlistKeyPrefix)
	observe("get_all", entitySonglist, start, err)
	if err != nil {
		return nil, fmt.Errorf("list songlists: %w", err)
	}
	slices.SortFunc(lists, func(a, b *models.Songlist) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return lists, nil
}

// GetByID returns one songlist or models.ErrNotFound.
func (s *SonglistStore) GetByID(ctx context.Context, id int64) (*models.Songlist, error) {
	start := time.Now()
	l, err := get[models.Songlist](ctx, s.d, entityKey(songlistKeyPrefix, id))
	observe("get", entitySonglist, start, err)
	if err != nil {
		return nil, fmt.Errorf("songlist %d: %w", id, err)
	}
	return l, nil
}

// Save writes the whole songlist.
func (s *SonglistStore) Save(ctx context.Context, l *models.Songlist) error {
	start := time.Now()
	key := entityKey(songlistKeyPrefix, l.ID)

	unlock := s.d.locks.Lock(string(key))
	err := put(ctx, s.d, key, l)
	unlock()

	observe("save", entitySonglist, start, err)
	return err
}

// Upsert creates the songlist or updates its owner and name, keeping its
// songs.
func (s *SonglistStore) Upsert(ctx context.Context, id, ownerID int64, name string) (*models.Songlist, bool, error) {
	start := time.Now()
	list, created, err := upsert(ctx, s.d, entityKey(songlistKeyPrefix, id), func(l *models.Songlist, _ bool) {
		l.ID = id
		l.OwnerID = ownerID
		l.Name = name
	})
	observe("upsert", entitySonglist, start, err)
	if err != nil {
		return nil, false, fmt.Errorf("songlist %d: %w", id, err)
	}
	return list, created, nil
}

// AddSong appends songID to the songlist. The song must exist; adding a song
// already in the list is a no-op.
func (s *SonglistStore) AddSong(ctx context.Context, songlistID, songID int64) (*models.Songlist, error) {
	start := time.Now()

	ok, err := exists(s.d, entityKey(songKeyPrefix, songID))
	if err == nil && !ok {
		err = fmt.Errorf("song %d: %w", songID, models.ErrNotFound)
	}
	if err != nil {
		observe("add_song", entitySonglist, start, err)
		return nil, err
	}

	l, err := mutate(ctx, s.d, entityKey(songlistKeyPrefix, songlistID), func(l *models.Songlist) error {
		l.Add(songID)
		return nil
	})
	observe("add_song", entitySonglist, start, err)
	if err != nil {
		return nil, fmt.Errorf("songlist %d: %w", songlistID, err)
	}
	return l, nil
}

// RemoveSong removes songID from the songlist if present.
func (s *SonglistStore) RemoveSong(ctx context.Context, songlistID, songID int64) (*models.Songlist, error) {
	start := time.Now()
	l, err := mutate(ctx, s.d, entityKey(songlistKeyPrefix, songlistID), func(l *models.Songlist) error {
		l.Remove(songID)
		return nil
	})
	observe("remove_song", entitySonglist, start, err)
	if err != nil {
		return nil, fmt.Errorf("songlist %d: %w", songlistID, err)
	}
	return l, nil
}
