// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/tuneisland/internal/recommend/algorithms"
)

var (
	// ErrDataEmpty is returned when a training cycle has no users or no songs.
	ErrDataEmpty = errors.New("no users or songs to train on")

	// ErrModelLookup is the factor model's out-of-range error. The hybrid
	// scorer treats it as a zero ML score.
	ErrModelLookup = algorithms.ErrFactorIndex

	// ErrExternalService marks failures of the text-generation call or of
	// parsing its response.
	ErrExternalService = errors.New("external service failure")

	// ErrTrainingInProgress is returned when a cycle is requested while
	// another one holds the training lock.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// UserRecommendationError records a failure isolated to one user during a
// training cycle. The batch continues and the user's stored list is cleared.
type UserRecommendationError struct {
	UserID int64
	Err    error
}

func (e *UserRecommendationError) Error() string {
	return fmt.Sprintf("recommend user %d: %v", e.UserID, e.Err)
}

func (e *UserRecommendationError) Unwrap() error {
	return e.Err
}

// BatchError is a failure that aborts a whole training cycle. Stored
// recommendations are left untouched.
type BatchError struct {
	Stage string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("training cycle failed at %s: %v", e.Stage, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Batch stages reported in BatchError.Stage.
const (
	StageLoad    = "load"
	StageMatrix  = "matrix"
	StageTrain   = "train"
	StageScore   = "score"
	StagePersist = "persist"
)
