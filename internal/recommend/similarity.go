// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// symmetryTolerance bounds the allowed asymmetry between mirrored cells
// when validating a similarity matrix.
const symmetryTolerance = 1e-9

// SimilarityMatrix is a symmetric user-user similarity matrix with a
// zero diagonal. Rows and columns are users in ascending id order.
//
// The matrix is immutable after construction and safe for concurrent
// reads.
type SimilarityMatrix struct {
	users  []int
	scores [][]float64
	index  map[int]int
}

// NewSimilarityMatrix constructs a similarity matrix from user ids and
// score rows. The matrix takes ownership of both slices. Returns an
// error wrapping ErrInvalidInput if the dimensions do not form a square
// matrix aligned with users.
func NewSimilarityMatrix(users []int, scores [][]float64) (*SimilarityMatrix, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users: %w", ErrInvalidInput)
	}
	if len(scores) != len(users) {
		return nil, fmt.Errorf("score rows %d != users %d: %w", len(scores), len(users), ErrInvalidInput)
	}
	for i, row := range scores {
		if len(row) != len(users) {
			return nil, fmt.Errorf("score row %d has %d columns, want %d: %w", i, len(row), len(users), ErrInvalidInput)
		}
	}

	index := make(map[int]int, len(users))
	for i, userID := range users {
		index[userID] = i
	}

	return &SimilarityMatrix{
		users:  users,
		scores: scores,
		index:  index,
	}, nil
}

// ComputeSimilarity computes the pairwise user-user similarity matrix
// over the interaction matrix rows. Pearson correlation is computed over
// the full zero-filled vectors; pairs where either vector has zero
// variance (Pearson) or zero norm (cosine) score 0. The diagonal is
// always 0 so a user never neighbors themself.
//
// Pair computations are distributed across workers; workers <= 0 falls
// back to 4.
func ComputeSimilarity(ctx context.Context, m *InteractionMatrix, metric Metric, workers int) (*SimilarityMatrix, error) {
	if m == nil || m.UserCount() == 0 {
		return nil, fmt.Errorf("no interaction matrix: %w", ErrInvalidInput)
	}

	var simFunc func(a, b []float64) float64
	switch metric {
	case MetricPearson:
		simFunc = pearsonSimilarity
	case MetricCosine:
		simFunc = cosineSimilarity
	default:
		return nil, fmt.Errorf("similarity metric %q: %w", metric, ErrInvalidInput)
	}

	if workers <= 0 {
		workers = 4
	}

	users := m.Users()
	n := len(users)

	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, n)
	}

	// Each pair (i, j) with i < j belongs to exactly one worker (the one
	// owning row i), so the mirrored writes never collide.
	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			for i := start; i < end; i++ {
				if contextCancelled(ctx) {
					return
				}

				rowI := m.rows[i]
				for j := i + 1; j < n; j++ {
					s := simFunc(rowI, m.rows[j])
					scores[i][j] = s
					scores[j][i] = s
				}
			}
		}(start, end)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return NewSimilarityMatrix(users, scores)
}

// pearsonSimilarity computes Pearson correlation over two full rating
// vectors, zeros included. Zero variance in either vector yields 0.
func pearsonSimilarity(a, b []float64) float64 {
	n := len(a)
	if n == 0 {
		return 0
	}

	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var num, denA, denB float64
	for i := range a {
		diffA := a[i] - meanA
		diffB := b[i] - meanB
		num += diffA * diffB
		denA += diffA * diffA
		denB += diffB * diffB
	}

	if denA == 0 || denB == 0 {
		return 0
	}

	return num / (math.Sqrt(denA) * math.Sqrt(denB))
}

// cosineSimilarity computes cosine similarity over two raw rating
// vectors. Zero norm in either vector yields 0.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Users returns the user ids in row order.
func (sm *SimilarityMatrix) Users() []int {
	out := make([]int, len(sm.users))
	copy(out, sm.users)
	return out
}

// Score returns the similarity between two users.
func (sm *SimilarityMatrix) Score(a, b int) (float64, bool) {
	i, ok := sm.index[a]
	if !ok {
		return 0, false
	}
	j, ok := sm.index[b]
	if !ok {
		return 0, false
	}
	return sm.scores[i][j], true
}

// Row returns a user's similarity vector in row order.
// The returned slice is shared; callers must not modify it.
func (sm *SimilarityMatrix) Row(userID int) ([]float64, bool) {
	i, ok := sm.index[userID]
	if !ok {
		return nil, false
	}
	return sm.scores[i], true
}

// HasUser reports whether the user appears in the matrix.
func (sm *SimilarityMatrix) HasUser(userID int) bool {
	_, ok := sm.index[userID]
	return ok
}

// UserCount returns the number of users in the matrix.
func (sm *SimilarityMatrix) UserCount() int {
	return len(sm.users)
}

// Snapshot returns copies of the user ids and score rows, suitable for
// serialization.
func (sm *SimilarityMatrix) Snapshot() ([]int, [][]float64) {
	users := make([]int, len(sm.users))
	copy(users, sm.users)

	scores := make([][]float64, len(sm.scores))
	for i, row := range sm.scores {
		scores[i] = make([]float64, len(row))
		copy(scores[i], row)
	}

	return users, scores
}

// Validate checks matrix integrity: every entry finite, mirrored cells
// equal within tolerance, and a zero diagonal. Violations return an
// error wrapping ErrDegenerateInput. Used to guard snapshots loaded
// from cache before they are served.
func (sm *SimilarityMatrix) Validate() error {
	for i := range sm.scores {
		if sm.scores[i][i] != 0 {
			return fmt.Errorf("nonzero diagonal at user %d: %w", sm.users[i], ErrDegenerateInput)
		}

		for j := i + 1; j < len(sm.scores); j++ {
			s := sm.scores[i][j]
			mirror := sm.scores[j][i]
			if math.IsNaN(s) || math.IsInf(s, 0) || math.IsNaN(mirror) || math.IsInf(mirror, 0) {
				return fmt.Errorf("non-finite score for users %d and %d: %w", sm.users[i], sm.users[j], ErrDegenerateInput)
			}
			if math.Abs(s-mirror) > symmetryTolerance {
				return fmt.Errorf("asymmetric scores for users %d and %d: %w", sm.users[i], sm.users[j], ErrDegenerateInput)
			}
		}
	}

	return nil
}

// contextCancelled reports whether the context is done without blocking.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
