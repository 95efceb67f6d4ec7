// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import "fmt"

// PredictRatings estimates ratings for every item at least one neighbor
// rated and the target has not. For a target user u and candidate item m:
//
//	pred(u, m) = mean(u) + sum_{v in N} sim(u, v) * (r(v, m) - mean(v)) / sum_{v in N} sim(u, v)
//
// where N is the subset of the neighborhood that rated m, means are over
// each user's own rated items, and the similarity sum keeps its sign. A
// candidate whose similarity sum is exactly zero is omitted rather than
// predicted.
//
// Candidates are visited in ascending item id order and keyed by title,
// so when two item ids share a title the higher id wins. An empty
// neighborhood yields an empty prediction set without error.
//
// Returns an error wrapping ErrInsufficientData if the target user has
// no rating history.
func PredictRatings(store *RatingStore, neighbors []Neighbor, targetUser int) (PredictionSet, error) {
	if store == nil {
		return nil, fmt.Errorf("no rating store: %w", ErrInvalidInput)
	}

	targetMean, err := store.MeanRating(targetUser)
	if err != nil {
		return nil, fmt.Errorf("predict for user %d: %w", targetUser, err)
	}

	predictions := make(PredictionSet)
	if len(neighbors) == 0 {
		return predictions, nil
	}

	targetRatings, _ := store.UserRatings(targetUser)

	// Candidate items: rated by at least one neighbor, unseen by the
	// target. Ascending id order keeps title collisions deterministic.
	candidates := make(map[int]struct{})
	for _, n := range neighbors {
		neighborRatings, ok := store.UserRatings(n.UserID)
		if !ok {
			continue
		}
		for itemID := range neighborRatings {
			if _, rated := targetRatings[itemID]; !rated {
				candidates[itemID] = struct{}{}
			}
		}
	}

	for _, itemID := range store.Items() {
		if _, ok := candidates[itemID]; !ok {
			continue
		}

		var weightedSum, similaritySum float64
		for _, n := range neighbors {
			rating, rated := store.Rating(n.UserID, itemID)
			if !rated {
				continue
			}

			neighborMean, err := store.MeanRating(n.UserID)
			if err != nil {
				continue
			}

			weightedSum += n.Score * (rating - neighborMean)
			similaritySum += n.Score
		}

		if similaritySum == 0 {
			continue
		}

		title, _ := store.TitleOf(itemID)
		predictions[title] = targetMean + weightedSum/similaritySum
	}

	return predictions, nil
}
