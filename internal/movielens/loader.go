// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package movielens loads MovieLens-style CSV exports as training
// observations.
//
// Two files make up a dataset: ratings.csv (userId, movieId, rating in
// the first three columns) and movies.csv (movieId, title in the first
// two). The loader inner-joins them on movieId: rating rows whose movie
// has no metadata entry are dropped, matching how the datasets are
// distributed. A header row in either file is detected and skipped.
package movielens

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/reclens-io/reclens/internal/recommend"
)

// contextCheckInterval is how many rating rows are parsed between
// context cancellation checks.
const contextCheckInterval = 10000

// Dataset is the result of loading a MovieLens export.
type Dataset struct {
	// Observations is the joined rating data, ready for training.
	Observations []recommend.Observation

	// MovieCount is the number of movie metadata entries read.
	MovieCount int

	// RatingCount is the number of rating rows read.
	RatingCount int

	// DroppedRatings counts rating rows dropped by the join because
	// their movieId has no movies.csv entry.
	DroppedRatings int
}

// Loader reads a MovieLens CSV pair. It implements the engine's
// DataProvider interface.
type Loader struct {
	ratingsPath string
	moviesPath  string
}

var _ recommend.DataProvider = (*Loader)(nil)

// NewLoader creates a loader for the given ratings and movies files.
func NewLoader(ratingsPath, moviesPath string) *Loader {
	return &Loader{
		ratingsPath: ratingsPath,
		moviesPath:  moviesPath,
	}
}

// LoadObservations loads and joins both files, returning the flattened
// observation slice.
func (l *Loader) LoadObservations(ctx context.Context) ([]recommend.Observation, error) {
	ds, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Observations, nil
}

// Load loads and joins both files, returning the dataset with join
// statistics.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	titles, err := l.loadMovies()
	if err != nil {
		return nil, err
	}

	ds := &Dataset{MovieCount: len(titles)}

	f, err := os.Open(l.ratingsPath)
	if err != nil {
		return nil, fmt.Errorf("open ratings file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	for record := 1; ; record++ {
		if record%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ratings record %d: %w", record, err)
		}

		if len(row) < 3 {
			return nil, fmt.Errorf("ratings record %d: %d fields, want at least 3: %w",
				record, len(row), recommend.ErrInvalidInput)
		}

		userID, err := strconv.Atoi(row[0])
		if err != nil {
			if record == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("ratings record %d: user id %q: %w", record, row[0], recommend.ErrInvalidInput)
		}

		itemID, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("ratings record %d: movie id %q: %w", record, row[1], recommend.ErrInvalidInput)
		}

		rating, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("ratings record %d: rating %q: %w", record, row[2], recommend.ErrInvalidInput)
		}

		ds.RatingCount++

		title, ok := titles[itemID]
		if !ok {
			ds.DroppedRatings++
			continue
		}

		ds.Observations = append(ds.Observations, recommend.Observation{
			UserID:    userID,
			ItemID:    itemID,
			ItemTitle: title,
			Rating:    rating,
		})
	}

	return ds, nil
}

// loadMovies reads the movie metadata file into an id-to-title map.
// Duplicate ids keep the last title seen.
func (l *Loader) loadMovies() (map[int]string, error) {
	f, err := os.Open(l.moviesPath)
	if err != nil {
		return nil, fmt.Errorf("open movies file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	titles := make(map[int]string)

	for record := 1; ; record++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("movies record %d: %w", record, err)
		}

		if len(row) < 2 {
			return nil, fmt.Errorf("movies record %d: %d fields, want at least 2: %w",
				record, len(row), recommend.ErrInvalidInput)
		}

		itemID, err := strconv.Atoi(row[0])
		if err != nil {
			if record == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("movies record %d: movie id %q: %w", record, row[0], recommend.ErrInvalidInput)
		}

		titles[itemID] = row[1]
	}

	return titles, nil
}
