// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package middleware provides HTTP middleware shared across API route groups.
//
// Both middlewares use the standard func(http.Handler) http.Handler shape so
// they compose directly with chi's r.Use():
//
//   - RequestID: assigns or propagates an X-Request-ID header and threads the
//     ID through the request context for structured logging.
//   - PrometheusMetrics: records per-request latency, throughput, and
//     in-flight count via the metrics package.
//
// CORS and rate limiting are not implemented here; the api package composes
// go-chi/cors and go-chi/httprate for those concerns.
package middleware
