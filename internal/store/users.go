// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend"
)

const entityUser = "user"

// UserStore persists user profiles.
type UserStore struct {
	d *DB
}

var _ recommend.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore on d.
func NewUserStore(d *DB) *UserStore {
	return &UserStore{d: d}
}

// GetAll returns every user ordered by id.
func (s *UserStore) GetAll(ctx context.Context) ([]*models.UserProfile, error) {
	start := time.Now()
	users, err := listPrefix[models.UserProfile](ctx, s.d, userKeyPrefix)
	observe("get_all", entityUser, start, err)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.SortFunc(users, func(a, b *models.UserProfile) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return users, nil
}

// GetByID returns one user or models.ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.UserProfile, error) {
	start := time.Now()
	u, err := get[models.UserProfile](ctx, s.d, entityKey(userKeyPrefix, id))
	observe("get", entityUser, start, err)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	return u, nil
}

// Save writes the whole profile.
func (s *UserStore) Save(ctx context.Context, user *models.UserProfile) error {
	start := time.Now()
	key := entityKey(userKeyPrefix, user.ID)

	unlock := s.d.locks.Lock(string(key))
	err := put(ctx, s.d, key, user)
	unlock()

	observe("save", entityUser, start, err)
	return err
}

// Upsert creates the user or renames an existing one, keeping its history,
// collections, ratings and recommendations.
func (s *UserStore) Upsert(ctx context.Context, id int64, name string) (*models.UserProfile, bool, error) {
	start := time.Now()
	user, created, err := upsert(ctx, s.d, entityKey(userKeyPrefix, id), func(u *models.UserProfile, _ bool) {
		u.ID = id
		u.Name = name
	})
	observe("upsert", entityUser, start, err)
	if err != nil {
		return nil, false, fmt.Errorf("user %d: %w", id, err)
	}
	return user, created, nil
}

// SaveAll writes every profile in a single batch.
func (s *UserStore) SaveAll(ctx context.Context, users []*models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	wb := s.d.db.NewWriteBatch()
	defer wb.Cancel()

	for _, u := range users {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("marshal user %d: %w", u.ID, err)
		}
		if err := wb.Set(entityKey(userKeyPrefix, u.ID), data); err != nil {
			return fmt.Errorf("batch user %d: %w", u.ID, err)
		}
	}
	err := wb.Flush()
	observe("save_all", entityUser, start, err)
	if err != nil {
		return fmt.Errorf("flush users: %w", err)
	}
	return nil
}

// SaveRecommendations replaces RecommendedItems for each listed user in a
// single transaction: either every list is written or none is. All listed
// user keys are locked first, in key order, so plays and collections recorded
// during training survive. Users deleted since the cycle loaded them are
// skipped.
func (s *UserStore) SaveRecommendations(ctx context.Context, lists map[int64][]int64) error {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		observe("save_recommendations", entityUser, start, err)
		return err
	}

	ids := make([]int64, 0, len(lists))
	keys := make([]string, 0, len(lists))
	for id := range lists {
		ids = append(ids, id)
		keys = append(keys, string(entityKey(userKeyPrefix, id)))
	}
	slices.Sort(ids)

	unlock := s.d.locks.LockAll(keys)
	defer unlock()

	err := s.d.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := entityKey(userKeyPrefix, id)

			var u models.UserProfile
			err := getJSON(txn, key, &u)
			if errors.Is(err, models.ErrNotFound) {
				s.d.logger.Debug().Int64("user_id", id).Msg("user removed before recommendations were saved")
				continue
			}
			if err != nil {
				return fmt.Errorf("save recommendations for user %d: %w", id, err)
			}

			u.RecommendedItems = slices.Clone(lists[id])
			if u.RecommendedItems == nil {
				u.RecommendedItems = []int64{}
			}
			if err := putJSON(txn, key, &u); err != nil {
				return fmt.Errorf("save recommendations for user %d: %w", id, err)
			}
		}
		return nil
	})

	observe("save_recommendations", entityUser, start, err)
	return err
}

// Collect adds a songlist to the user's collected set. Collecting an already
// collected songlist is a no-op.
func (s *UserStore) Collect(ctx context.Context, userID, songlistID int64) (*models.UserProfile, error) {
	start := time.Now()

	found, err := exists(s.d, entityKey(songlistKeyPrefix, songlistID))
	if err == nil && !found {
		err = fmt.Errorf("songlist %d: %w", songlistID, models.ErrNotFound)
	}
	if err != nil {
		observe("collect", entityUser, start, err)
		return nil, err
	}

	u, err := mutate(ctx, s.d, entityKey(userKeyPrefix, userID), func(u *models.UserProfile) error {
		u.Collect(songlistID)
		return nil
	})
	observe("collect", entityUser, start, err)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	return u, nil
}

// recordHistory prepends songID to the user's history.
func (s *UserStore) recordHistory(ctx context.Context, userID, songID int64) error {
	_, err := mutate(ctx, s.d, entityKey(userKeyPrefix, userID), func(u *models.UserProfile) error {
		u.RecordPlay(songID)
		return nil
	})
	return err
}

// recordRating stores the user's own rating for songID.
func (s *UserStore) recordRating(ctx context.Context, userID, songID int64, rating float64) error {
	_, err := mutate(ctx, s.d, entityKey(userKeyPrefix, userID), func(u *models.UserProfile) error {
		if u.Ratings == nil {
			u.Ratings = make(map[int64]float64)
		}
		u.Ratings[songID] = rating
		return nil
	})
	return err
}

// userExists reports whether the user is stored.
func (s *UserStore) userExists(id int64) (bool, error) {
	return exists(s.d, entityKey(userKeyPrefix, id))
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	key := entityKey(userKeyPrefix, id)

	unlock := s.d.locks.Lock(string(key))
	defer unlock()

	err := s.d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	observe("delete", entityUser, start, err)
	return err
}
