// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package config loads and validates application configuration.
//
// Configuration is layered with Koanf v2, highest priority last:
//
//	defaults (structs provider) < config.yaml (file provider) < RECLENS_* env vars
//
// The config file is located through CONFIG_PATH or the well-known paths in
// DefaultConfigPaths. Environment variables use the RECLENS_ prefix and flat
// names mapped onto nested paths, e.g. RECLENS_HTTP_PORT -> server.port and
// RECLENS_METRIC -> recommend.metric; unmapped variables are ignored.
//
// Validate runs on every Load, so a process never starts with an
// internally inconsistent configuration.
package config
