// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package database provides DuckDB-backed storage for rating observations
// and movie metadata.
//
// The schema is two flat tables, ratings and movies, bulk-loaded from
// MovieLens-style CSV files through DuckDB's read_csv. The package
// implements the recommendation engine's DataProvider interface, so a
// trained model can be rebuilt from the database at any time without
// re-reading the source files.
//
// An empty database path opens an in-memory instance, which tests and
// one-shot CLI runs rely on.
package database
