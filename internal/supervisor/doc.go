// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package supervisor builds the suture supervision tree that runs the
// application's long-lived components.
//
// The root supervisor owns two child supervisors, model-layer and
// api-layer, so a crashing training loop is restarted with backoff
// without taking the HTTP server down with it. Supervisor lifecycle
// events are logged through sutureslog.
package supervisor
