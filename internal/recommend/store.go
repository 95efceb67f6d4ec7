// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// RatingStore holds aggregated rating observations and serves per-user
// lookups for the pipeline. Duplicate (user, item) observations are
// aggregated by mean at construction; all downstream reads, including
// user means, see the aggregated values.
//
// A RatingStore is immutable after construction and safe for concurrent
// reads.
type RatingStore struct {
	users  []int
	items  []int
	titles map[int]string

	// ratings maps userID -> itemID -> aggregated rating.
	ratings map[int]map[int]float64

	// means maps userID -> mean of the user's aggregated ratings.
	means map[int]float64

	observationCount int
}

// NewRatingStore builds a store from raw observations.
// Returns an error wrapping ErrInvalidInput if the observation set is
// empty or contains a non-finite rating.
func NewRatingStore(observations []Observation) (*RatingStore, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("no observations: %w", ErrInvalidInput)
	}

	sums := make(map[int]map[int]float64)
	counts := make(map[int]map[int]int)
	titles := make(map[int]string)
	itemSet := make(map[int]struct{})

	for _, obs := range observations {
		if math.IsNaN(obs.Rating) || math.IsInf(obs.Rating, 0) {
			return nil, fmt.Errorf("observation user=%d item=%d: non-finite rating: %w",
				obs.UserID, obs.ItemID, ErrInvalidInput)
		}

		if sums[obs.UserID] == nil {
			sums[obs.UserID] = make(map[int]float64)
			counts[obs.UserID] = make(map[int]int)
		}
		sums[obs.UserID][obs.ItemID] += obs.Rating
		counts[obs.UserID][obs.ItemID]++

		titles[obs.ItemID] = obs.ItemTitle
		itemSet[obs.ItemID] = struct{}{}
	}

	ratings := make(map[int]map[int]float64, len(sums))
	means := make(map[int]float64, len(sums))
	users := make([]int, 0, len(sums))

	for userID, itemSums := range sums {
		userRatings := make(map[int]float64, len(itemSums))
		var total float64
		for itemID, sum := range itemSums {
			r := sum / float64(counts[userID][itemID])
			userRatings[itemID] = r
			total += r
		}
		ratings[userID] = userRatings
		means[userID] = total / float64(len(userRatings))
		users = append(users, userID)
	}
	sort.Ints(users)

	items := make([]int, 0, len(itemSet))
	for itemID := range itemSet {
		items = append(items, itemID)
	}
	sort.Ints(items)

	return &RatingStore{
		users:            users,
		items:            items,
		titles:           titles,
		ratings:          ratings,
		means:            means,
		observationCount: len(observations),
	}, nil
}

// Users returns the user ids in ascending order.
func (s *RatingStore) Users() []int {
	out := make([]int, len(s.users))
	copy(out, s.users)
	return out
}

// Items returns the item ids in ascending order.
func (s *RatingStore) Items() []int {
	out := make([]int, len(s.items))
	copy(out, s.items)
	return out
}

// TitleOf returns the title recorded for an item.
func (s *RatingStore) TitleOf(itemID int) (string, bool) {
	title, ok := s.titles[itemID]
	return title, ok
}

// Rating returns the aggregated rating a user gave an item.
func (s *RatingStore) Rating(userID, itemID int) (float64, bool) {
	userRatings, ok := s.ratings[userID]
	if !ok {
		return 0, false
	}
	r, ok := userRatings[itemID]
	return r, ok
}

// UserRatings returns a user's aggregated ratings keyed by item id.
// The returned map is shared; callers must not modify it.
func (s *RatingStore) UserRatings(userID int) (map[int]float64, bool) {
	userRatings, ok := s.ratings[userID]
	return userRatings, ok
}

// MeanRating returns the mean of a user's aggregated ratings.
// Returns an error wrapping ErrInsufficientData if the user has no
// rating history.
func (s *RatingStore) MeanRating(userID int) (float64, error) {
	mean, ok := s.means[userID]
	if !ok {
		return 0, fmt.Errorf("user %d has no ratings: %w", userID, ErrInsufficientData)
	}
	return mean, nil
}

// HasUser reports whether the user has any ratings.
func (s *RatingStore) HasUser(userID int) bool {
	_, ok := s.ratings[userID]
	return ok
}

// UserCount returns the number of unique users.
func (s *RatingStore) UserCount() int {
	return len(s.users)
}

// ItemCount returns the number of unique items.
func (s *RatingStore) ItemCount() int {
	return len(s.items)
}

// ObservationCount returns the number of raw observations ingested,
// before duplicate aggregation.
func (s *RatingStore) ObservationCount() int {
	return s.observationCount
}
