// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it reports JSON field
// names and registers a "songtag" rule that accepts only the fixed song tag
// vocabulary. Failures convert to the API's VALIDATION_ERROR shape:
//
//	req := models.RateRequest{...}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, verr)
//	    return
//	}
package validation
