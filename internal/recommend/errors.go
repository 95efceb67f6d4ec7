// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import "errors"

// Sentinel errors returned by the pipeline. Callers match them with
// errors.Is; all returned errors wrap one of these with context about
// the failing operation.
var (
	// ErrInvalidInput indicates malformed or empty input: an empty
	// observation set, a non-finite rating, an unrecognized metric, or
	// mismatched matrix dimensions.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownUser indicates the requested user does not appear in the
	// trained similarity model.
	ErrUnknownUser = errors.New("unknown user")

	// ErrInsufficientData indicates the target user has no usable rating
	// history to center predictions against.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateInput indicates a similarity matrix failed integrity
	// checks: non-finite entries, asymmetry, or a nonzero diagonal.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrNotTrained indicates the engine has no trained model yet.
	ErrNotTrained = errors.New("model not trained")
)
