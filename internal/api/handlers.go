// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import (
	"context"
	"time"

	"github.com/tomtom215/tuneisland/internal/config"
	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend"
	"github.com/tomtom215/tuneisland/internal/store"
)

// RecommendEngine is the part of recommend.Engine the handlers use.
type RecommendEngine interface {
	GetRecommendedItems(ctx context.Context, userID int64, n int) ([]*models.Song, error)
	HotSongs(ctx context.Context) ([]*models.Song, error)
	Train(ctx context.Context) error
	Status() recommend.TrainingStatus
}

// Pinger reports storage availability for the readiness probe.
type Pinger interface {
	Ping() error
}

// Handler serves every API endpoint.
type Handler struct {
	engine    RecommendEngine
	users     *store.UserStore
	songs     *store.SongStore
	songlists *store.SonglistStore
	db        Pinger
	config    *config.Config
	startTime time.Time

	// trainDone, when set, receives the result of each background cycle
	// started by TriggerTraining.
	trainDone chan<- error
}

// Stores groups the entity stores the handlers read and mutate.
type Stores struct {
	Users     *store.UserStore
	Songs     *store.SongStore
	Songlists *store.SonglistStore
}

// NewHandler creates a new Handler.
func NewHandler(engine RecommendEngine, stores Stores, db Pinger, cfg *config.Config) *Handler {
	return &Handler{
		engine:    engine,
		users:     stores.Users,
		songs:     stores.Songs,
		songlists: stores.Songlists,
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
}
