// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/tuneisland/internal/models"
)

// UserStore persists user profiles.
type UserStore interface {
	GetAll(ctx context.Context) ([]*models.UserProfile, error)
	GetByID(ctx context.Context, id int64) (*models.UserProfile, error)
	Save(ctx context.Context, user *models.UserProfile) error
	SaveAll(ctx context.Context, users []*models.UserProfile) error

	// SaveRecommendations replaces RecommendedItems for each user in lists
	// without touching any other profile field. An empty slice clears the
	// stored list. On error no list is changed.
	SaveRecommendations(ctx context.Context, lists map[int64][]int64) error
}

// ItemStore provides read access to the song catalog.
type ItemStore interface {
	GetAll(ctx context.Context) ([]*models.Song, error)
	GetByID(ctx context.Context, id int64) (*models.Song, error)

	// FindMostPlayed returns songs by descending play count.
	FindMostPlayed(ctx context.Context, limit int) ([]*models.Song, error)
}

// SonglistStore resolves songlists for liked-song lookup.
type SonglistStore interface {
	GetByID(ctx context.Context, id int64) (*models.Songlist, error)
}

// Request is the input to a Strategy for one user.
type Request struct {
	// UserIndex is the user's row in the trained model.
	UserIndex int
	User      *models.UserProfile

	// Candidates is the full catalog in matrix column order.
	Candidates []*models.Song

	Context *RecommendationContext
	N       int
}

// Strategy produces an ordered recommendation list for one user.
type Strategy interface {
	Name() string
	Recommend(ctx context.Context, req Request) ([]*models.Song, error)
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether a cycle is currently running.
	IsTraining bool `json:"is_training"`

	// Progress is the cycle progress (0-100).
	Progress int `json:"progress"`

	// LastRunID identifies the most recent cycle.
	LastRunID string `json:"last_run_id,omitempty"`

	// LastTrainedAt is when the last successful cycle completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last cycle took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last cycle error, if any.
	LastError string `json:"last_error,omitempty"`

	UserCount   int     `json:"user_count"`
	SongCount   int     `json:"song_count"`
	FailedUsers int     `json:"failed_users"`
	ModelRMSE   float64 `json:"model_rmse"`
	ModelEpoch  int     `json:"model_epoch"`
}

// CycleResult summarizes one completed training cycle.
type CycleResult struct {
	RunID       string
	Users       int
	Songs       int
	FailedUsers []int64
	RMSE        float64
	Epoch       int
	Duration    time.Duration

	// Lists is what was persisted, keyed by user id.
	Lists map[int64][]int64
}
