// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package config

import (
	"fmt"
	"strings"
)

// validLogLevels lists accepted logging levels.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateServer validates HTTP server settings.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

// validateData validates the data source selection.
func (c *Config) validateData() error {
	switch strings.ToLower(c.Data.Source) {
	case "csv":
		if c.Data.RatingsPath == "" {
			return fmt.Errorf("data.ratings_path is required when data.source is csv")
		}
		if c.Data.MoviesPath == "" {
			return fmt.Errorf("data.movies_path is required when data.source is csv")
		}
	case "duckdb":
		// Database.Path may be empty (in-memory), which is valid for tests
		// but pointless for serving; the database layer logs a warning.
	default:
		return fmt.Errorf("data.source must be one of [csv, duckdb], got %q", c.Data.Source)
	}
	return nil
}

// validateRecommend validates recommendation engine settings. The engine
// revalidates its own derived Config; this catches misconfiguration with
// config-file field names before the engine is built.
func (c *Config) validateRecommend() error {
	if c.Recommend.Neighbors < 1 {
		return fmt.Errorf("recommend.neighbors must be positive, got %d", c.Recommend.Neighbors)
	}
	if c.Recommend.TopN < 1 {
		return fmt.Errorf("recommend.top_n must be positive, got %d", c.Recommend.TopN)
	}
	switch strings.ToLower(c.Recommend.Metric) {
	case "pearson", "cosine":
	default:
		return fmt.Errorf("recommend.metric must be one of [pearson, cosine], got %q", c.Recommend.Metric)
	}
	if c.Recommend.Workers < 1 {
		return fmt.Errorf("recommend.workers must be positive, got %d", c.Recommend.Workers)
	}
	if c.Recommend.TrainInterval <= 0 {
		return fmt.Errorf("recommend.train_interval must be positive, got %v", c.Recommend.TrainInterval)
	}
	if c.Recommend.MinObservations < 1 {
		return fmt.Errorf("recommend.min_observations must be positive, got %d", c.Recommend.MinObservations)
	}
	if c.Recommend.CacheTTL < 0 {
		return fmt.Errorf("recommend.cache_ttl must not be negative, got %v", c.Recommend.CacheTTL)
	}
	return nil
}

// validateAPI validates API middleware settings.
func (c *Config) validateAPI() error {
	if c.API.RateLimitDisabled {
		return nil
	}
	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("api.rate_limit_requests must be positive, got %d", c.API.RateLimitRequests)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %v", c.API.RateLimitWindow)
	}
	return nil
}

// validateLogging validates logging settings.
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of [trace, debug, info, warn, error, fatal], got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("logging.format must be one of [json, console], got %q", c.Logging.Format)
	}
}
