// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package simcache persists similarity matrix snapshots across restarts.
//
// Training the similarity matrix is the expensive step of the pipeline.
// This package stores the trained matrix on disk so a restart can restore
// it instead of recomputing, as long as the user population is unchanged.
//
// # Storage Format
//
// Snapshots are stored gob-encoded and gzip-compressed, one file per
// metric and version:
//
//	filename: {metric}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (SnapshotMetadata)
//	  - CompressedData (gzip-compressed gob-encoded matrix payload)
//
// A SHA-256 checksum of the uncompressed payload is stored in the
// metadata and verified on load, so a corrupted snapshot fails loudly
// instead of serving wrong scores.
//
// # Directory Structure
//
//	/data/snapshots/
//	  pearson_v1.gob.gz
//	  pearson_v2.gob.gz     <- latest
//	  cosine_v1.gob.gz
//
// # Version Management
//
// The store tracks the latest version per metric. Old versions are
// retained until Prune removes them, which allows rolling back by
// loading an explicit earlier version.
//
// # Thread Safety
//
// All store operations are safe for concurrent use. Saves take a write
// lock; loads run concurrently under a read lock.
package simcache
