// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reclens_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reclens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reclens_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reclens_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"status"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "reclens_training_duration_seconds",
			Help: "Duration of model training runs in seconds",
			// Training is O(users^2 * items); buckets span sub-second toy
			// datasets up to multi-minute production runs
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800},
		},
	)

	LastTrainingTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reclens_last_training_timestamp_seconds",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	ModelUserCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reclens_model_users",
			Help: "Number of users in the trained model",
		},
	)

	ModelItemCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reclens_model_items",
			Help: "Number of items in the trained model",
		},
	)

	// Recommendation Metrics
	RecommendationsServedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reclens_recommendations_served_total",
			Help: "Total number of recommendation responses served",
		},
	)

	RecommendationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reclens_recommendation_errors_total",
			Help: "Total number of failed recommendation requests",
		},
		[]string{"code"},
	)

	// Similarity Snapshot Cache Metrics
	SimilarityCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reclens_similarity_cache_hits_total",
			Help: "Total number of similarity snapshot cache hits",
		},
	)

	SimilarityCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reclens_similarity_cache_misses_total",
			Help: "Total number of similarity snapshot cache misses",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reclens_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reclens_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reclens_app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTrainingRun records the outcome of a model training run.
// Successful runs also update the last-training timestamp.
func RecordTrainingRun(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	TrainingRunsTotal.WithLabelValues(status).Inc()
	TrainingDuration.Observe(duration.Seconds())

	if success {
		LastTrainingTimestamp.SetToCurrentTime()
	}
}

// UpdateModelSize records the dimensions of the trained model.
func UpdateModelSize(users, items int) {
	ModelUserCount.Set(float64(users))
	ModelItemCount.Set(float64(items))
}

// RecordRecommendationServed increments the served recommendations counter.
func RecordRecommendationServed() {
	RecommendationsServedTotal.Inc()
}

// RecordRecommendationError records a failed recommendation request by error code.
func RecordRecommendationError(code string) {
	RecommendationErrors.WithLabelValues(code).Inc()
}

// RecordSimilarityCacheHit records a similarity snapshot cache hit.
func RecordSimilarityCacheHit() {
	SimilarityCacheHits.Inc()
}

// RecordSimilarityCacheMiss records a similarity snapshot cache miss.
func RecordSimilarityCacheMiss() {
	SimilarityCacheMisses.Inc()
}

// RecordDBQuery records the duration of a database query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// SetAppInfo publishes version information as a constant gauge.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
