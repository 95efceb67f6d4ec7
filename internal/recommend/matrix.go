// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import "fmt"

// InteractionMatrix is a dense user-item rating matrix. Rows are users
// in ascending id order, columns are items in ascending id order, and
// cells the user never rated hold zero.
//
// The matrix is immutable after construction and safe for concurrent
// reads.
type InteractionMatrix struct {
	users []int
	items []int
	rows  [][]float64

	userIndex map[int]int
	itemIndex map[int]int
}

// BuildInteractionMatrix builds the dense matrix from a rating store.
// Returns an error wrapping ErrInvalidInput for a nil or empty store.
func BuildInteractionMatrix(store *RatingStore) (*InteractionMatrix, error) {
	if store == nil || store.UserCount() == 0 {
		return nil, fmt.Errorf("no rating data: %w", ErrInvalidInput)
	}

	users := store.Users()
	items := store.Items()

	userIndex := make(map[int]int, len(users))
	for i, userID := range users {
		userIndex[userID] = i
	}
	itemIndex := make(map[int]int, len(items))
	for j, itemID := range items {
		itemIndex[itemID] = j
	}

	rows := make([][]float64, len(users))
	for i, userID := range users {
		row := make([]float64, len(items))
		userRatings, _ := store.UserRatings(userID)
		for itemID, rating := range userRatings {
			row[itemIndex[itemID]] = rating
		}
		rows[i] = row
	}

	return &InteractionMatrix{
		users:     users,
		items:     items,
		rows:      rows,
		userIndex: userIndex,
		itemIndex: itemIndex,
	}, nil
}

// Users returns the user ids in row order.
func (m *InteractionMatrix) Users() []int {
	out := make([]int, len(m.users))
	copy(out, m.users)
	return out
}

// Items returns the item ids in column order.
func (m *InteractionMatrix) Items() []int {
	out := make([]int, len(m.items))
	copy(out, m.items)
	return out
}

// Row returns a user's rating vector.
// The returned slice is shared; callers must not modify it.
func (m *InteractionMatrix) Row(userID int) ([]float64, bool) {
	i, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}
	return m.rows[i], true
}

// Rating returns the matrix cell for a (user, item) pair. Zero means
// either a zero rating or no rating.
func (m *InteractionMatrix) Rating(userID, itemID int) (float64, bool) {
	i, ok := m.userIndex[userID]
	if !ok {
		return 0, false
	}
	j, ok := m.itemIndex[itemID]
	if !ok {
		return 0, false
	}
	return m.rows[i][j], true
}

// UserCount returns the number of rows.
func (m *InteractionMatrix) UserCount() int {
	return len(m.users)
}

// ItemCount returns the number of columns.
func (m *InteractionMatrix) ItemCount() int {
	return len(m.items)
}
