// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/reclens-io/reclens/internal/metrics"
	"github.com/reclens-io/reclens/internal/recommend"
)

// DB implements the engine's DataProvider interface.
var _ recommend.DataProvider = (*DB)(nil)

// LoadObservations returns all rating observations joined with item
// titles, ordered by user then item for deterministic training input.
// Ratings whose movie has no metadata row are dropped by the inner join,
// matching the CSV loader's behavior.
func (db *DB) LoadObservations(ctx context.Context) ([]recommend.Observation, error) {
	query := `
		SELECT r.user_id, r.movie_id, m.title, r.rating
		FROM ratings r
		JOIN movies m ON r.movie_id = m.movie_id
		ORDER BY r.user_id, r.movie_id
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var observations []recommend.Observation
	for rows.Next() {
		var obs recommend.Observation
		if err := rows.Scan(&obs.UserID, &obs.ItemID, &obs.ItemTitle, &obs.Rating); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		observations = append(observations, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return observations, nil
}

// Stats summarizes the stored observation set.
type Stats struct {
	// Ratings is the number of stored rating rows.
	Ratings int `json:"ratings"`

	// Users is the number of distinct rating users.
	Users int `json:"users"`

	// Movies is the number of movie metadata rows.
	Movies int `json:"movies"`
}

// GetStats returns row counts for the status endpoint.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM ratings),
			(SELECT COUNT(DISTINCT user_id) FROM ratings),
			(SELECT COUNT(*) FROM movies)
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query)

	var stats Stats
	err := row.Scan(&stats.Ratings, &stats.Users, &stats.Movies)
	metrics.RecordDBQuery("select", "stats", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	return &stats, nil
}
