// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package api

import (
	"errors"
	"net/http"

	"github.com/reclens-io/reclens/internal/metrics"
	"github.com/reclens-io/reclens/internal/recommend"
)

// respondEngineError maps engine sentinel errors onto HTTP status codes
// and records the failure. Unknown users are 404, data-quality failures
// are 422, an untrained model is 503, everything else is 500.
func respondEngineError(w http.ResponseWriter, err error) {
	var status int
	var code, message string

	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters"
	case errors.Is(err, recommend.ErrUnknownUser):
		status, code, message = http.StatusNotFound, "UNKNOWN_USER", "User not found in training data"
	case errors.Is(err, recommend.ErrDegenerateInput):
		status, code, message = http.StatusUnprocessableEntity, "DEGENERATE_INPUT", "Training data is degenerate"
	case errors.Is(err, recommend.ErrInsufficientData):
		status, code, message = http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", "Not enough data to generate recommendations"
	case errors.Is(err, recommend.ErrNotTrained):
		status, code, message = http.StatusServiceUnavailable, "MODEL_NOT_TRAINED", "Model has not been trained yet"
	default:
		status, code, message = http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations"
	}

	metrics.RecordRecommendationError(code)
	respondError(w, status, code, message, err)
}
