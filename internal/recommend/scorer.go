// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend/algorithms"
)

// ratingConfidenceCount is the number of ratings at which the rating score
// stops being dampened.
const ratingConfidenceCount = 10.0

// Predictor is satisfied by *algorithms.FactorModel.
type Predictor interface {
	Predict(u, i int) (float64, error)
}

// HybridScorer blends the factor model prediction with tag, like, popularity
// and rating signals.
//
//	score = w.ML*ml + w.Tag*tag + w.Like*like + w.Popularity*pop + w.Rating*rating
//
// Candidates are ranked by descending score; equal scores keep candidate
// order.
type HybridScorer struct {
	weights    ScoreWeights
	model      Predictor
	itemIndex  map[int64]int
	popularity *algorithms.Popularity
	logger     zerolog.Logger
}

var _ Strategy = (*HybridScorer)(nil)

// NewHybridScorer creates a scorer over a trained model. itemIndex maps song
// ids to model item rows; popularity must already be fitted to the catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHybridScorer(weights ScoreWeights, model Predictor, itemIndex map[int64]int, popularity *algorithms.Popularity, logger zerolog.Logger) *HybridScorer {
	if popularity == nil {
		popularity = algorithms.NewPopularity()
	}
	return &HybridScorer{
		weights:    weights,
		model:      model,
		itemIndex:  itemIndex,
		popularity: popularity,
		logger:     logger.With().Str("strategy", StrategyHybrid).Logger(),
	}
}

// Name returns the strategy name.
func (s *HybridScorer) Name() string {
	return StrategyHybrid
}

// Score returns the composite score of song for the user at model row
// userIndex. A model lookup failure contributes 0 to the ML term.
func (s *HybridScorer) Score(userIndex int, song *models.Song, rc *RecommendationContext) float64 {
	w := s.weights
	return w.ML*s.mlScore(userIndex, song) +
		w.Tag*TagScore(song, rc) +
		w.Like*LikeScore(song, rc) +
		w.Popularity*s.popularity.Score(song) +
		w.Rating*RatingScore(song)
}

// Recommend returns the top n candidates. It never fails: if the context is
// missing or scoring panics, candidates are ordered by play count instead.
func (s *HybridScorer) Recommend(_ context.Context, req Request) ([]*models.Song, error) {
	return s.rank(req.UserIndex, req.Candidates, req.Context, req.N), nil
}

func (s *HybridScorer) rank(userIndex int, candidates []*models.Song, rc *RecommendationContext, n int) (out []*models.Song) {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn().
				Int("user_index", userIndex).
				Str("panic", fmt.Sprint(r)).
				Msg("scoring failed, using popularity ordering")
			out = PopularityFallback(candidates, n)
		}
	}()

	if rc == nil {
		s.logger.Warn().Int("user_index", userIndex).Msg("missing recommendation context, using popularity ordering")
		return PopularityFallback(candidates, n)
	}

	type scored struct {
		song  *models.Song
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, song := range candidates {
		if song == nil {
			continue
		}
		ranked = append(ranked, scored{song: song, score: s.Score(userIndex, song, rc)})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	n = min(n, len(ranked))
	out = make([]*models.Song, n)
	for i := range out {
		out[i] = ranked[i].song
	}
	return out
}

func (s *HybridScorer) mlScore(userIndex int, song *models.Song) float64 {
	if s.model == nil {
		return 0
	}
	itemIndex, ok := s.itemIndex[song.ID]
	if !ok {
		return 0
	}
	v, err := s.model.Predict(userIndex, itemIndex)
	if err != nil {
		if !errors.Is(err, ErrModelLookup) {
			s.logger.Debug().Err(err).Int64("song_id", song.ID).Msg("prediction failed")
		}
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// TagScore is the mean of the user's tag preference over the song's tags.
func TagScore(song *models.Song, rc *RecommendationContext) float64 {
	if len(song.Tags) == 0 || len(rc.TagPreferences) == 0 {
		return 0
	}
	var sum float64
	for _, tag := range song.Tags {
		sum += rc.TagPreferences[tag]
	}
	return sum / float64(len(song.Tags))
}

// LikeScore is 1 for liked songs and 0 otherwise.
func LikeScore(song *models.Song, rc *RecommendationContext) float64 {
	if rc.IsLiked(song.ID) {
		return 1
	}
	return 0
}

// RatingScore is the normalized mean rating, dampened for songs with fewer
// than ten ratings.
func RatingScore(song *models.Song) float64 {
	if !song.HasRating() {
		return 0
	}
	confidence := math.Min(1.0, float64(song.RatingCount)/ratingConfidenceCount)
	return (song.Rating / models.MaxRating) * confidence
}
