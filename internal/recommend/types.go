// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// Metric identifies a user-user similarity function.
type Metric string

const (
	// MetricPearson is Pearson correlation computed over full rating
	// vectors. Unrated cells contribute zeros, matching the interaction
	// matrix representation.
	MetricPearson Metric = "pearson"

	// MetricCosine is cosine similarity over raw rating vectors.
	MetricCosine Metric = "cosine"
)

// ParseMetric parses a metric name. Matching is case-insensitive.
// Unrecognized names return an error wrapping ErrInvalidInput.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricPearson:
		return MetricPearson, nil
	case MetricCosine:
		return MetricCosine, nil
	default:
		return "", fmt.Errorf("similarity metric %q: %w", s, ErrInvalidInput)
	}
}

// Valid reports whether the metric is a recognized similarity function.
func (m Metric) Valid() bool {
	return m == MetricPearson || m == MetricCosine
}

// String returns the metric name.
func (m Metric) String() string {
	return string(m)
}

// Observation is a single explicit rating event.
type Observation struct {
	// UserID is the rating user's identifier.
	UserID int `json:"user_id"`

	// ItemID is the rated item's identifier.
	ItemID int `json:"item_id"`

	// ItemTitle is the item's display title.
	ItemTitle string `json:"item_title"`

	// Rating is the explicit rating value.
	Rating float64 `json:"rating"`
}

// Neighbor is a user similar to a target user.
type Neighbor struct {
	// UserID is the neighbor's identifier.
	UserID int `json:"user_id"`

	// Score is the similarity between the neighbor and the target.
	Score float64 `json:"score"`
}

// PredictionSet maps item titles to predicted ratings for one user.
type PredictionSet map[string]float64

// Recommendation is a ranked item with its predicted rating.
type Recommendation struct {
	// ItemTitle is the recommended item's display title.
	ItemTitle string `json:"item_title"`

	// PredictedRating is the estimated rating for the target user.
	PredictedRating float64 `json:"predicted_rating"`
}

// Request represents a recommendation request.
type Request struct {
	// UserID is the user to generate recommendations for.
	UserID int `json:"user_id"`

	// N is the number of recommendations to return.
	// Defaults to Config.TopN if zero.
	N int `json:"n,omitempty"`

	// K is the neighborhood size.
	// Defaults to Config.Neighbors if zero.
	K int `json:"k,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response represents a recommendation response.
type Response struct {
	// Items is the ordered list of recommendations.
	Items []Recommendation `json:"items"`

	// Neighbors is the most similar portion of the neighborhood used,
	// capped for display.
	Neighbors []Neighbor `json:"neighbors"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the recommendations are for.
	UserID int `json:"user_id"`

	// Metric is the similarity metric the model was trained with.
	Metric string `json:"metric"`

	// K is the neighborhood size used.
	K int `json:"k"`

	// N is the requested number of recommendations.
	N int `json:"n"`

	// CandidateCount is the number of items the predictor scored.
	CandidateCount int `json:"candidate_count"`

	// LatencyMS is the total recommendation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// ModelVersion is the version of the trained model used.
	ModelVersion int `json:"model_version"`

	// TrainedAt is when the model was last trained.
	TrainedAt time.Time `json:"trained_at"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is in progress.
	IsTraining bool `json:"is_training"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// ObservationCount is the number of observations in the training set.
	ObservationCount int `json:"observation_count"`

	// UserCount is the number of unique users.
	UserCount int `json:"user_count"`

	// ItemCount is the number of unique items.
	ItemCount int `json:"item_count"`

	// Metric is the similarity metric of the trained model.
	Metric string `json:"metric,omitempty"`

	// ModelVersion is the current model version.
	ModelVersion int `json:"model_version"`
}

// Metrics contains engine counters for observability.
type Metrics struct {
	// RequestCount is the total number of recommendation requests.
	RequestCount int64 `json:"request_count"`

	// CacheHits is the number of response cache hits.
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of response cache misses.
	CacheMisses int64 `json:"cache_misses"`

	// TrainingCount is the number of completed training runs.
	TrainingCount int64 `json:"training_count"`

	// ErrorCount is the total number of request errors.
	ErrorCount int64 `json:"error_count"`
}
