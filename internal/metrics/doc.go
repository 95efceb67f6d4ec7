// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package metrics provides Prometheus instrumentation for Reclens.
//
// Collectors are registered once at package load via promauto and exposed
// through the /metrics endpoint. Instrumented concerns:
//
//   - API request latency, throughput, and in-flight count
//   - Model training runs, duration, and last-success timestamp
//   - Trained model dimensions (users, items)
//   - Recommendations served and per-code request failures
//   - Similarity snapshot cache hits and misses
//   - DuckDB query duration and errors
//
// Record* helper functions wrap the collectors so call sites stay one-liners:
//
//	start := time.Now()
//	rows, err := db.conn.QueryContext(ctx, query)
//	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
package metrics
