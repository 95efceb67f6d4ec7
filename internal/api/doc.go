// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package api exposes the recommendation engine over HTTP.
//
// Routing uses Chi with production middleware from its ecosystem:
// go-chi/cors for CORS, go-chi/httprate for IP-keyed rate limiting.
// Every response uses the APIResponse envelope, so clients check the
// status field before reading data or error.
//
// Endpoints:
//
//	GET  /api/v1/recommendations/{userID}?n=&k=  ranked recommendations
//	GET  /api/v1/neighbors/{userID}?k=           top-K similar users
//	GET  /api/v1/status                          training state and counters
//	POST /api/v1/train                           trigger background retraining
//	GET  /api/v1/health/live                     liveness probe
//	GET  /api/v1/health/ready                    readiness probe
//	GET  /metrics                                Prometheus metrics
package api
