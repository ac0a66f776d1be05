// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

// Package recommend implements the batch song recommender and its read path.
//
// # Architecture
//
// A training cycle runs in four stages:
//
//  1. Build: every user's play history, collected songlists and ratings are
//     turned into an affinity matrix (algorithms.MatrixBuilder).
//  2. Train: SGD matrix factorization with early stopping produces an
//     immutable factor model (algorithms.FactorTrainer).
//  3. Score: each user is scored independently on a bounded worker group by
//     the configured Strategy. HybridScorer is the default; a generative
//     strategy backed by a text-generation service is the alternative.
//  4. Persist: the per-user id lists are written in one store call.
//
// A failure in stages 1, 2 or 4, or cancellation during stage 3, aborts the
// cycle as a *BatchError and leaves every stored list as it was. A failure for
// a single user in stage 3 is logged, reported as a *UserRecommendationError
// and clears that user's list; the rest of the batch continues.
//
// # Hybrid Score
//
//	score = 0.60*ML + 0.20*Tag + 0.09*Like + 0.10*Popularity + 0.01*Rating
//
// Ties keep catalog order. If scoring fails the scorer returns the catalog by
// play count instead.
//
// # Read Path
//
// GetRecommendedItems resolves the stored ids, skipping deleted songs, and
// falls back to the most played songs when nothing resolves. It never takes
// the training lock. The hot list is cached and invalidated after each cycle.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetStores(users, songs, songlists)
//
//	if err := engine.Train(ctx); err != nil && !errors.Is(err, recommend.ErrDataEmpty) {
//	    logger.Error().Err(err).Msg("training failed")
//	}
//
//	songs, err := engine.GetRecommendedItems(ctx, userID, 10)
package recommend
