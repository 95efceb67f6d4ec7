// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment
// variables and config files.
//
// Configuration loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all settings
//  2. Config file: optional YAML config file (config.yaml)
//  3. Environment variables: RECLENS_-prefixed overrides (highest priority)
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP listen port.
	// Default: 1895 (the year Pearson formalized the correlation coefficient).
	Port int `koanf:"port"`

	// Host is the HTTP listen address.
	// Default: 0.0.0.0.
	Host string `koanf:"host"`

	// Timeout is the per-request read/write timeout.
	// Default: 30s.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB configuration.
type DatabaseConfig struct {
	// Path is the DuckDB database file path. An empty path opens an
	// in-memory database.
	// Default: /data/reclens.duckdb.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory limit.
	// Default: 2GB.
	MaxMemory string `koanf:"max_memory"`

	// Threads is the number of DuckDB worker threads.
	// 0 means runtime.NumCPU(). Default: 0.
	Threads int `koanf:"threads"`
}

// DataConfig selects and locates the observation source.
type DataConfig struct {
	// Source selects the data provider: csv reads the MovieLens files
	// directly, duckdb reads observations previously imported into the
	// database. Default: csv.
	Source string `koanf:"source"`

	// RatingsPath is the MovieLens ratings.csv path.
	// Default: /data/ratings.csv.
	RatingsPath string `koanf:"ratings_path"`

	// MoviesPath is the MovieLens movies.csv path.
	// Default: /data/movies.csv.
	MoviesPath string `koanf:"movies_path"`
}

// RecommendConfig holds recommendation engine and training configuration.
// These values map onto the engine's own Config at startup.
type RecommendConfig struct {
	// Neighbors is the default neighborhood size k.
	// Default: 40.
	Neighbors int `koanf:"neighbors"`

	// TopN is the default number of recommendations returned.
	// Default: 10.
	TopN int `koanf:"top_n"`

	// Metric is the similarity metric: pearson or cosine.
	// Default: pearson.
	Metric string `koanf:"metric"`

	// Workers is the number of similarity computation workers.
	// Default: 4.
	Workers int `koanf:"workers"`

	// SnapshotDir is the similarity snapshot cache directory.
	// Empty disables snapshot persistence. Default: /data/snapshots.
	SnapshotDir string `koanf:"snapshot_dir"`

	// TrainOnStartup triggers training when the serve command starts.
	// Default: true.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// TrainInterval is the time between scheduled retraining runs.
	// Default: 24h.
	TrainInterval time.Duration `koanf:"train_interval"`

	// MinObservations is the minimum number of observations required to
	// train. Default: 1.
	MinObservations int `koanf:"min_observations"`

	// CacheTTL is the response cache time-to-live.
	// Default: 5m.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// APIConfig holds API middleware configuration.
type APIConfig struct {
	// CORSOrigins lists allowed CORS origins.
	// Default: empty (CORS effectively disabled until configured).
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests is the request budget per window per client IP.
	// Default: 100.
	RateLimitRequests int `koanf:"rate_limit_requests"`

	// RateLimitWindow is the rate limiting window.
	// Default: 1m.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off rate limiting entirely.
	// Default: false.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json.
	Format string `koanf:"format"`

	// Caller includes caller file and line in log output.
	// Default: false.
	Caller bool `koanf:"caller"`
}

// defaultConfig returns a Config with all default values applied.
// These defaults are layered first, then overridden by config file and
// environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            1895,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/reclens.duckdb",
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Data: DataConfig{
			Source:      "csv",
			RatingsPath: "/data/ratings.csv",
			MoviesPath:  "/data/movies.csv",
		},
		Recommend: RecommendConfig{
			Neighbors:       40,
			TopN:            10,
			Metric:          "pearson",
			Workers:         4,
			SnapshotDir:     "/data/snapshots",
			TrainOnStartup:  true,
			TrainInterval:   24 * time.Hour,
			MinObservations: 1,
			CacheTTL:        5 * time.Minute,
		},
		API: APIConfig{
			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
