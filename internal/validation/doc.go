// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library in a thread-safe
// singleton with user-friendly error messages and conversion to the API
// error envelope. API handlers use it to validate query-parameter structs
// before touching the recommendation engine.
//
// # Quick Start
//
//	type recommendationsQuery struct {
//	    K int `validate:"min=0,max=500"`
//	    N int `validate:"min=0,max=100"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    q := recommendationsQuery{K: getIntParam(r, "k", 0), N: getIntParam(r, "n", 0)}
//	    if verr := validation.ValidateStruct(&q); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//	}
//
// The singleton validator caches struct metadata, so repeated validation of
// the same request types is cheap.
package validation
