// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

// Package algorithms implements the numerical building blocks of the
// recommender: the implicit-feedback affinity matrix, the SGD matrix
// factorization trainer and popularity ordering.
//
// # Thread Safety
//
// AffinityMatrix and FactorModel values are immutable once returned and may be
// read from any number of goroutines. FactorTrainer is safe to reuse
// sequentially; the orchestrator guarantees that at most one training run is
// in flight.
package algorithms

import (
	"context"
	"errors"
)

// ErrFactorIndex is returned by FactorModel.Predict for a user or item index
// outside the trained model.
var ErrFactorIndex = errors.New("factor index out of range")

// UserSignals is one user's implicit and explicit feedback, already resolved
// against songlists. Liked may be nil.
type UserSignals struct {
	UserID  int64
	History []int64
	Liked   map[int64]struct{}
	Ratings map[int64]float64
}

// ContextCancelled checks if the context has been cancelled.
// Training loops call this once per epoch.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
