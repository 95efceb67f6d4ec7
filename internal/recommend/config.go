// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Neighbors is the default neighborhood size k.
	// Default: 40.
	Neighbors int `json:"neighbors"`

	// TopN is the default number of recommendations to return.
	// Default: 10.
	TopN int `json:"top_n"`

	// Metric is the similarity function used at training time.
	// Default: pearson.
	Metric Metric `json:"metric"`

	// Workers is the number of parallel workers for similarity computation.
	// Default: 4.
	Workers int `json:"workers"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Training contains training schedule parameters.
	Training TrainingConfig `json:"training"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxNeighbors is the maximum allowed neighborhood size.
	// Default: 500.
	MaxNeighbors int `json:"max_neighbors"`

	// MaxTopN is the maximum allowed number of recommendations.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// TrainingConfig contains training schedule parameters.
type TrainingConfig struct {
	// Interval is the time between scheduled training runs.
	// Default: 24h.
	Interval time.Duration `json:"interval"`

	// MinObservations is the minimum number of observations required to
	// train. Default: 1.
	MinObservations int `json:"min_observations"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`

	// RetainVersions is the number of similarity snapshots to retain.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether response caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`

	// InvalidateOnTrain controls whether the cache is cleared after
	// training. Default: true.
	InvalidateOnTrain bool `json:"invalidate_on_train"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Neighbors: 40,
		TopN:      10,
		Metric:    MetricPearson,
		Workers:   4,
		Limits: LimitsConfig{
			MaxNeighbors: 500,
			MaxTopN:      100,
		},
		Training: TrainingConfig{
			Interval:        24 * time.Hour,
			MinObservations: 1,
			Timeout:         10 * time.Minute,
			RetainVersions:  3,
		},
		Cache: CacheConfig{
			Enabled:           true,
			TTL:               5 * time.Minute,
			MaxEntries:        10000,
			InvalidateOnTrain: true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Neighbors < 1 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if !c.Metric.Valid() {
		return fmt.Errorf("metric must be one of [pearson, cosine], got %q", c.Metric)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	if c.Limits.MaxNeighbors < c.Neighbors {
		return fmt.Errorf("limits.max_neighbors must be >= neighbors, got %d < %d", c.Limits.MaxNeighbors, c.Neighbors)
	}
	if c.Limits.MaxTopN < c.TopN {
		return fmt.Errorf("limits.max_top_n must be >= top_n, got %d < %d", c.Limits.MaxTopN, c.TopN)
	}

	if c.Training.MinObservations < 1 {
		return fmt.Errorf("training.min_observations must be positive, got %d", c.Training.MinObservations)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.RetainVersions < 1 {
		return fmt.Errorf("training.retain_versions must be positive, got %d", c.Training.RetainVersions)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types
	return &Config{
		Neighbors: c.Neighbors,
		TopN:      c.TopN,
		Metric:    c.Metric,
		Workers:   c.Workers,
		Limits:    c.Limits,
		Training:  c.Training,
		Cache:     c.Cache,
	}
}
