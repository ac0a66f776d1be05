// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package api

import "errors"

// Common API errors
var (
	// ErrInvalidID indicates a path id that is not a positive integer
	ErrInvalidID = errors.New("id must be a positive integer")

	// ErrEmptyBody indicates a request that needs a JSON body but sent none
	ErrEmptyBody = errors.New("request body is empty")
)
