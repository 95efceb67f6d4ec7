// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import (
	"fmt"
	"sort"
)

// SelectNeighbors returns the k users most similar to the target, in
// descending similarity order. Equal scores break on ascending user id,
// and the target never appears in its own neighborhood. k <= 0 returns
// an empty neighborhood.
//
// Returns an error wrapping ErrUnknownUser if the target is absent from
// the similarity matrix.
func SelectNeighbors(sm *SimilarityMatrix, targetUser, k int) ([]Neighbor, error) {
	if sm == nil {
		return nil, fmt.Errorf("no similarity matrix: %w", ErrInvalidInput)
	}

	row, ok := sm.Row(targetUser)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", targetUser, ErrUnknownUser)
	}

	if k <= 0 {
		return []Neighbor{}, nil
	}

	neighbors := make([]Neighbor, 0, len(sm.users)-1)
	for i, userID := range sm.users {
		if userID == targetUser {
			continue
		}
		neighbors = append(neighbors, Neighbor{UserID: userID, Score: row[i]})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}

	return neighbors, nil
}
