// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reclens-io/reclens/internal/logging"
	"github.com/reclens-io/reclens/internal/metrics"
)

// ImportStats reports the outcome of a MovieLens bulk import.
type ImportStats struct {
	// RatingsImported is the number of rating rows loaded.
	RatingsImported int `json:"ratings_imported"`

	// MoviesImported is the number of movie rows loaded.
	MoviesImported int `json:"movies_imported"`

	// Duration is the total import wall time.
	Duration time.Duration `json:"-"`
}

// ImportMovieLens bulk-loads MovieLens ratings.csv and movies.csv into the
// database through DuckDB's read_csv. An import replaces any previously
// stored observations, so re-importing the same files is idempotent.
//
// Expected columns (by header name): ratings.csv carries userId, movieId,
// rating; movies.csv carries movieId, title. Extra columns such as
// timestamp and genres are ignored.
func (db *DB) ImportMovieLens(ctx context.Context, ratingsPath, moviesPath string) (*ImportStats, error) {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	//nolint:errcheck // rollback after commit is a no-op
	defer tx.Rollback()

	// read_csv does not accept bound parameters for the path, so the
	// paths are embedded as escaped string literals
	ratingsQuery := fmt.Sprintf(`
		INSERT INTO ratings (user_id, movie_id, rating)
		SELECT userId, movieId, rating
		FROM read_csv(%s, header = true)
	`, quoteLiteral(ratingsPath))

	moviesQuery := fmt.Sprintf(`
		INSERT INTO movies (movie_id, title)
		SELECT movieId, title
		FROM read_csv(%s, header = true)
	`, quoteLiteral(moviesPath))

	for _, stmt := range []string{"DELETE FROM ratings", "DELETE FROM movies"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("clear previous import: %w", err)
		}
	}

	ratingsResult, err := tx.ExecContext(ctx, ratingsQuery)
	metrics.RecordDBQuery("insert", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("import ratings from %s: %w", ratingsPath, err)
	}

	moviesStart := time.Now()
	moviesResult, err := tx.ExecContext(ctx, moviesQuery)
	metrics.RecordDBQuery("insert", "movies", time.Since(moviesStart), err)
	if err != nil {
		return nil, fmt.Errorf("import movies from %s: %w", moviesPath, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	stats := &ImportStats{Duration: time.Since(start)}
	if n, err := ratingsResult.RowsAffected(); err == nil {
		stats.RatingsImported = int(n)
	}
	if n, err := moviesResult.RowsAffected(); err == nil {
		stats.MoviesImported = int(n)
	}

	logging.Info().
		Int("ratings", stats.RatingsImported).
		Int("movies", stats.MoviesImported).
		Int64("duration_ms", stats.Duration.Milliseconds()).
		Msg("movielens import complete")

	return stats, nil
}

// quoteLiteral escapes a string for embedding as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
