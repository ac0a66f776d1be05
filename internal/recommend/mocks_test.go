// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/tomtom215/tuneisland/internal/models"
)

// memoryUserStore is an in-memory UserStore.
type memoryUserStore struct {
	mu      sync.Mutex
	users   map[int64]*models.UserProfile
	saveErr error
}

func newMemoryUserStore(users ...*models.UserProfile) *memoryUserStore {
	s := &memoryUserStore{users: make(map[int64]*models.UserProfile)}
	for _, u := range users {
		s.users[u.ID] = u.Clone()
	}
	return s
}

func (s *memoryUserStore) GetAll(context.Context) ([]*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.UserProfile, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	slices.SortFunc(out, func(a, b *models.UserProfile) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id int64) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *memoryUserStore) Save(_ context.Context, u *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u.Clone()
	return nil
}

func (s *memoryUserStore) SaveAll(ctx context.Context, users []*models.UserProfile) error {
	for _, u := range users {
		if err := s.Save(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryUserStore) SaveRecommendations(_ context.Context, lists map[int64][]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	for id, ids := range lists {
		if u, ok := s.users[id]; ok {
			u.RecommendedItems = slices.Clone(ids)
		}
	}
	return nil
}

func (s *memoryUserStore) recommended(id int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users[id].RecommendedItems)
}

// memoryItemStore is an in-memory ItemStore.
type memoryItemStore struct {
	mu         sync.Mutex
	songs      map[int64]*models.Song
	mostPlayed int
}

func newMemoryItemStore(songs ...*models.Song) *memoryItemStore {
	s := &memoryItemStore{songs: make(map[int64]*models.Song)}
	for _, song := range songs {
		s.songs[song.ID] = song.Clone()
	}
	return s
}

func (s *memoryItemStore) GetAll(context.Context) ([]*models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Song, 0, len(s.songs))
	for _, song := range s.songs {
		out = append(out, song.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Song) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *memoryItemStore) GetByID(_ context.Context, id int64) (*models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return song.Clone(), nil
}

func (s *memoryItemStore) FindMostPlayed(ctx context.Context, limit int) ([]*models.Song, error) {
	all, _ := s.GetAll(ctx)
	s.mu.Lock()
	s.mostPlayed++
	s.mu.Unlock()
	return PopularityFallback(all, limit), nil
}

func (s *memoryItemStore) delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.songs, id)
}

func (s *memoryItemStore) mostPlayedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mostPlayed
}

// memorySonglistStore is an in-memory SonglistStore.
type memorySonglistStore map[int64]*models.Songlist

func (s memorySonglistStore) GetByID(_ context.Context, id int64) (*models.Songlist, error) {
	l, ok := s[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return l, nil
}

// funcStrategy adapts a function to Strategy.
type funcStrategy struct {
	name string
	fn   func(ctx context.Context, req Request) ([]*models.Song, error)
}

func (s funcStrategy) Name() string { return s.name }

func (s funcStrategy) Recommend(ctx context.Context, req Request) ([]*models.Song, error) {
	return s.fn(ctx, req)
}
