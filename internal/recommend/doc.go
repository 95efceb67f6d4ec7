// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package recommend implements user-based collaborative filtering over
// explicit ratings.
//
// # Pipeline
//
// Recommendations are produced by a five-stage pipeline:
//
//   - RatingStore: ingests observations, aggregates duplicate (user, item)
//     pairs by mean, and serves per-user rating lookups and means.
//   - BuildInteractionMatrix: produces a dense user-item matrix with rows
//     and columns in ascending id order and zeros for unrated cells.
//   - ComputeSimilarity: computes the symmetric user-user similarity matrix
//     (Pearson or cosine) over the interaction matrix rows.
//   - SelectNeighbors: picks the k most similar users for a target.
//   - PredictRatings / TopN: predicts ratings for unseen items from the
//     neighborhood and ranks the top n.
//
// # Design Principles
//
//   - Deterministic: identical observations produce bit-identical matrices,
//     neighborhoods, and rankings. All ties break on ascending ids or titles.
//   - Explicit errors: sentinel errors (ErrInvalidInput, ErrUnknownUser,
//     ErrInsufficientData, ErrDegenerateInput) are wrapped with context and
//     checked with errors.Is.
//   - Observable: the Engine logs structured fields and exposes training
//     status and counters.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(db)
//
//	if err := engine.Train(ctx); err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: 42,
//	    N:      10,
//	})
//
// # Thread Safety
//
// The Engine is safe for concurrent use. Training swaps the model under an
// exclusive lock while recommendation requests read a consistent snapshot
// under a shared lock. The pipeline functions themselves are pure and may
// be used directly without the Engine.
package recommend
