// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tuneisland/internal/cache"
	"github.com/tomtom215/tuneisland/internal/metrics"
	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend/algorithms"
)

const hotListKey = "hot"

// Progress checkpoints reported in TrainingStatus.Progress.
const (
	progressMatrix  = 5
	progressTrained = 70
	progressScored  = 95
	progressDone    = 100
)

// Engine runs training cycles and serves stored recommendations.
// It is safe for concurrent use. At most one training cycle runs at a time;
// the read path never waits for it.
type Engine struct {
	config *Config
	logger zerolog.Logger

	users     UserStore
	items     ItemStore
	songlists SonglistStore

	builder    *algorithms.MatrixBuilder
	generative Strategy

	// trainMu is held for the whole cycle.
	trainMu sync.Mutex

	statusMu sync.RWMutex
	status   TrainingStatus

	hot *cache.LRU[string, []*models.Song]

	hookMu sync.RWMutex
	hooks  []func(*CycleResult)
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ttl := cfg.HotListTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Engine{
		config:  cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		builder: algorithms.NewMatrixBuilder(),
		hot:     cache.NewLRU[string, []*models.Song](1, ttl),
	}, nil
}

// SetStores wires the persistence collaborators.
func (e *Engine) SetStores(users UserStore, items ItemStore, songlists SonglistStore) {
	e.users = users
	e.items = items
	e.songlists = songlists
}

// SetGenerative registers the strategy used when Config.Strategy is
// "generative".
func (e *Engine) SetGenerative(s Strategy) {
	e.generative = s
	e.logger.Info().Str("strategy", s.Name()).Msg("registered generative strategy")
}

// OnCycleComplete registers a hook called after every successful cycle.
func (e *Engine) OnCycleComplete(fn func(*CycleResult)) {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Status returns a snapshot of the training status.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// Train loads every user and song from the stores and runs one cycle.
func (e *Engine) Train(ctx context.Context) error {
	_, err := e.withTrainingLock(ctx, func(ctx context.Context) ([]*models.UserProfile, []*models.Song, error) {
		if e.users == nil || e.items == nil {
			return nil, nil, fmt.Errorf("stores not set")
		}
		users, err := e.users.GetAll(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load users: %w", err)
		}
		items, err := e.items.GetAll(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load songs: %w", err)
		}
		return users, items, nil
	})
	return err
}

// RunTrainingCycle computes and persists a recommendation list for every
// user. A failure for one user clears that user's list and the batch
// continues; a failure of a shared stage aborts the cycle and leaves every
// stored list untouched.
func (e *Engine) RunTrainingCycle(ctx context.Context, users []*models.UserProfile, items []*models.Song) (*CycleResult, error) {
	return e.withTrainingLock(ctx, func(context.Context) ([]*models.UserProfile, []*models.Song, error) {
		return users, items, nil
	})
}

type loadFunc func(ctx context.Context) ([]*models.UserProfile, []*models.Song, error)

func (e *Engine) withTrainingLock(ctx context.Context, load loadFunc) (*CycleResult, error) {
	if err := e.acquireTrainingLock(); err != nil {
		return nil, err
	}
	defer e.trainMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	e.initializeTrainingStatus(runID)

	trainCtx, cancel := context.WithTimeout(ctx, e.config.TrainTimeout)
	defer cancel()

	logger := e.logger.With().Str("run_id", runID).Logger()
	logger.Info().Msg("starting training cycle")

	result, err := e.runCycle(trainCtx, logger, runID, load)
	e.finalizeTrainingStatus(start, result, err)

	switch {
	case errors.Is(err, ErrDataEmpty):
		metrics.RecordTrainingCycle("skipped", time.Since(start))
		logger.Info().Msg("no users or songs, training cycle skipped")
		return nil, err
	case err != nil:
		metrics.RecordTrainingCycle("error", time.Since(start))
		logger.Error().Err(err).Msg("training cycle failed")
		return nil, err
	}

	metrics.RecordTrainingCycle("success", result.Duration)
	metrics.RecordTrainingModel(result.Users, len(result.FailedUsers), result.Epoch, result.RMSE)

	e.InvalidateHotSongs()
	e.runHooks(result)

	logger.Info().
		Int("users", result.Users).
		Int("songs", result.Songs).
		Int("failed_users", len(result.FailedUsers)).
		Float64("rmse", result.RMSE).
		Int64("duration_ms", result.Duration.Milliseconds()).
		Msg("training cycle complete")

	return result, nil
}

// acquireTrainingLock attempts to acquire the training lock.
func (e *Engine) acquireTrainingLock() error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	return nil
}

func (e *Engine) runCycle(ctx context.Context, logger zerolog.Logger, runID string, load loadFunc) (*CycleResult, error) {
	start := time.Now()

	users, items, err := load(ctx)
	if err != nil {
		return nil, &BatchError{Stage: StageLoad, Err: err}
	}
	if len(users) == 0 || len(items) == 0 {
		return nil, ErrDataEmpty
	}
	if e.users == nil {
		return nil, &BatchError{Stage: StagePersist, Err: errors.New("user store not set")}
	}

	liked := e.resolveLiked(ctx, logger, users)

	matrix, err := e.buildMatrix(users, items, liked)
	if err != nil {
		return nil, &BatchError{Stage: StageMatrix, Err: err}
	}
	e.setProgress(progressMatrix)

	model, err := e.trainModel(ctx, matrix)
	if err != nil {
		return nil, &BatchError{Stage: StageTrain, Err: err}
	}
	e.setProgress(progressTrained)

	// Candidates follow matrix column order.
	candidates := make([]*models.Song, len(matrix.ItemIDs))
	catalog := make(map[int64]*models.Song, len(items))
	for _, s := range items {
		catalog[s.ID] = s
	}
	for i, id := range matrix.ItemIDs {
		candidates[i] = catalog[id]
	}

	popularity := algorithms.NewPopularity()
	popularity.Fit(candidates)
	scorer := NewHybridScorer(e.config.Weights, model, matrix.ItemIndex, popularity, e.logger)
	strategy := e.selectStrategy(logger, scorer)

	lists, failed, err := e.scoreAll(ctx, logger, strategy, matrix, users, candidates, catalog, liked)
	if err != nil {
		return nil, &BatchError{Stage: StageScore, Err: err}
	}
	e.setProgress(progressScored)

	if err := e.users.SaveRecommendations(ctx, lists); err != nil {
		return nil, &BatchError{Stage: StagePersist, Err: err}
	}

	return &CycleResult{
		RunID:       runID,
		Users:       len(users),
		Songs:       len(items),
		FailedUsers: failed,
		RMSE:        model.RMSE(),
		Epoch:       model.Epoch(),
		Duration:    time.Since(start),
		Lists:       lists,
	}, nil
}

// resolveLiked returns each user's liked set in users order. Lookup errors
// are logged and the partial set is used.
func (e *Engine) resolveLiked(ctx context.Context, logger zerolog.Logger, users []*models.UserProfile) []map[int64]struct{} {
	liked := make([]map[int64]struct{}, len(users))
	for u, user := range users {
		set, err := ResolveLiked(ctx, e.songlists, user)
		if err != nil {
			logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to resolve some collected songlists")
		}
		liked[u] = set
	}
	return liked
}

func (e *Engine) buildMatrix(users []*models.UserProfile, items []*models.Song, liked []map[int64]struct{}) (m *algorithms.AffinityMatrix, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	signals := make([]algorithms.UserSignals, len(users))
	for u, user := range users {
		signals[u] = algorithms.UserSignals{
			UserID:  user.ID,
			History: user.History,
			Liked:   liked[u],
			Ratings: user.Ratings,
		}
	}
	return e.builder.Build(signals, items), nil
}

func (e *Engine) trainModel(ctx context.Context, m *algorithms.AffinityMatrix) (model *algorithms.FactorModel, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	trainer := algorithms.NewFactorTrainer(e.config.Factors, e.logger)
	maxEpochs := trainer.Config().MaxEpochs
	trainer.OnEpoch = func(s algorithms.EpochStats) {
		e.setProgress(progressMatrix + (progressTrained-progressMatrix)*s.Epoch/maxEpochs)
	}
	return trainer.Train(ctx, m)
}

func (e *Engine) selectStrategy(logger zerolog.Logger, hybrid Strategy) Strategy {
	if e.config.Strategy != StrategyGenerative {
		return hybrid
	}
	if e.generative == nil {
		logger.Warn().Msg("generative strategy configured but not registered, using hybrid")
		return hybrid
	}
	return e.generative
}

// scoreAll runs the strategy for every user on a bounded worker group.
// Failed users get an empty list.
func (e *Engine) scoreAll(
	ctx context.Context,
	logger zerolog.Logger,
	strategy Strategy,
	matrix *algorithms.AffinityMatrix,
	users []*models.UserProfile,
	candidates []*models.Song,
	catalog map[int64]*models.Song,
	liked []map[int64]struct{},
) (map[int64][]int64, []int64, error) {
	var (
		mu     sync.Mutex
		lists  = make(map[int64][]int64, len(users))
		failed []int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for u, user := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ids, err := e.recommendForUser(gctx, strategy, Request{
				UserIndex:  matrix.UserIndex[user.ID],
				User:       user,
				Candidates: candidates,
				N:          e.config.DefaultCount,
			}, catalog, liked[u])

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn().Err(err).Int64("user_id", user.ID).Msg("recommendation failed, clearing stored list")
				failed = append(failed, user.ID)
				lists[user.ID] = []int64{}
				return nil
			}
			lists[user.ID] = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return lists, failed, nil
}

// recommendForUser produces one user's list. Text generation failures fall
// back to rating order; anything else becomes a UserRecommendationError.
func (e *Engine) recommendForUser(
	ctx context.Context,
	strategy Strategy,
	req Request,
	catalog map[int64]*models.Song,
	liked map[int64]struct{},
) (ids []int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			ids = nil
			err = &UserRecommendationError{UserID: req.User.ID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	req.Context = NewRecommendationContext(req.User.History, catalog, liked)

	songs, err := strategy.Recommend(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrExternalService) {
			return nil, &UserRecommendationError{UserID: req.User.ID, Err: err}
		}
		e.logger.Warn().Err(err).Int64("user_id", req.User.ID).Msg("text generation failed, using rating fallback")
		metrics.RecordStrategyFallback(strategy.Name(), "rating")
		songs = RatingFallback(req.Candidates, req.N)
	}
	return songIDs(head(songs, req.N)), nil
}

func (e *Engine) runHooks(result *CycleResult) {
	e.hookMu.RLock()
	hooks := append([]func(*CycleResult){}, e.hooks...)
	e.hookMu.RUnlock()

	for _, fn := range hooks {
		fn(result)
	}
}

// initializeTrainingStatus prepares the training status.
func (e *Engine) initializeTrainingStatus(runID string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.IsTraining = true
	e.status.Progress = 0
	e.status.LastRunID = runID
	e.status.LastError = ""
}

// finalizeTrainingStatus updates the training status after completion.
func (e *Engine) finalizeTrainingStatus(start time.Time, result *CycleResult, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.status.IsTraining = false
	e.status.LastTrainingDurationMS = time.Since(start).Milliseconds()
	if err != nil {
		e.status.LastError = err.Error()
		return
	}

	e.status.Progress = progressDone
	e.status.LastTrainedAt = time.Now()
	e.status.UserCount = result.Users
	e.status.SongCount = result.Songs
	e.status.FailedUsers = len(result.FailedUsers)
	e.status.ModelRMSE = result.RMSE
	e.status.ModelEpoch = result.Epoch
}

func (e *Engine) setProgress(p int) {
	e.statusMu.Lock()
	e.status.Progress = p
	e.statusMu.Unlock()
}

// GetRecommendedItems returns up to n songs from the user's stored list,
// skipping ids that no longer resolve. When nothing resolves it returns the
// n most played songs instead. An unknown user gets the same popularity list.
func (e *Engine) GetRecommendedItems(ctx context.Context, userID int64, n int) ([]*models.Song, error) {
	if n <= 0 {
		n = e.config.DefaultCount
	}

	user, err := e.users.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		metrics.RecordRecommendationRead("unknown_user")
		return e.mostPlayed(ctx, n)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}

	songs := make([]*models.Song, 0, min(n, len(user.RecommendedItems)))
	for _, id := range user.RecommendedItems {
		if len(songs) == n {
			break
		}
		song, err := e.items.GetByID(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get song %d: %w", id, err)
		}
		songs = append(songs, song)
	}

	if len(songs) > 0 {
		metrics.RecordRecommendationRead("stored")
		return songs, nil
	}

	metrics.RecordRecommendationRead("popular")
	return e.mostPlayed(ctx, n)
}

// HotSongs returns the cached most played list.
func (e *Engine) HotSongs(ctx context.Context) ([]*models.Song, error) {
	return e.mostPlayed(ctx, e.config.HotListSize)
}

func (e *Engine) mostPlayed(ctx context.Context, n int) ([]*models.Song, error) {
	if n > e.config.HotListSize {
		return e.items.FindMostPlayed(ctx, n)
	}

	hot, ok := e.hot.Get(hotListKey)
	metrics.RecordHotCache(ok)
	if !ok {
		var err error
		hot, err = e.items.FindMostPlayed(ctx, e.config.HotListSize)
		if err != nil {
			return nil, fmt.Errorf("find most played: %w", err)
		}
		e.hot.Add(hotListKey, hot)
	}
	return slices.Clone(head(hot, n)), nil
}

// InvalidateHotSongs drops the cached hot list.
func (e *Engine) InvalidateHotSongs() {
	e.hot.Clear()
}
