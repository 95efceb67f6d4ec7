// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

// Package main is the entry point for the Reclens recommender.
//
// Reclens serves user-based collaborative filtering recommendations over
// MovieLens-style rating data. It builds a dense user-item interaction
// matrix, computes pairwise user similarities (Pearson or cosine), and
// predicts ratings for unseen items from each user's most similar
// neighbors.
//
// # Commands
//
//	reclens serve                          run the HTTP API server
//	reclens recommend -user 42 [-n 10]     one-shot recommendations to stdout
//	reclens import -ratings r.csv -movies m.csv   bulk-load CSVs into DuckDB
//	reclens version                        print the build version
//
// # Application Architecture
//
// The serve command initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config.yaml, and
//     RECLENS_* environment variables (Koanf v2)
//  2. Data provider: MovieLens CSV loader, or DuckDB when data.source=duckdb
//  3. Similarity snapshots: gob+gzip model persistence across restarts
//  4. Engine: similarity model, neighborhoods, and prediction
//  5. Supervision: suture tree running the training loop and HTTP server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (RECLENS_ prefix)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Common settings:
//   - RECLENS_HTTP_PORT: listen port (default 1895)
//   - RECLENS_METRIC: similarity metric, pearson or cosine
//   - RECLENS_NEIGHBORS: neighborhood size k (default 40)
//   - RECLENS_DATA_SOURCE: csv or duckdb
//   - RECLENS_RATINGS_PATH / RECLENS_MOVIES_PATH: MovieLens CSV locations
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the training loop and closes the database
//
// # Example Usage
//
// Serve from CSV files:
//
//	export RECLENS_RATINGS_PATH=./data/ratings.csv
//	export RECLENS_MOVIES_PATH=./data/movies.csv
//	./reclens serve
//
// Import into DuckDB, then serve from it:
//
//	./reclens import -ratings ./data/ratings.csv -movies ./data/movies.csv
//	RECLENS_DATA_SOURCE=duckdb ./reclens serve
//
// One-shot recommendations without a server:
//
//	./reclens recommend -user 42 -n 10 -metric cosine
//
// # Port 1895
//
// The default port 1895 references the year Karl Pearson formalized the
// correlation coefficient this recommender is built on.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/reclens-io/reclens/internal/api"
	"github.com/reclens-io/reclens/internal/config"
	"github.com/reclens-io/reclens/internal/database"
	"github.com/reclens-io/reclens/internal/logging"
	"github.com/reclens-io/reclens/internal/metrics"
	"github.com/reclens-io/reclens/internal/movielens"
	"github.com/reclens-io/reclens/internal/recommend"
	"github.com/reclens-io/reclens/internal/recommend/simcache"
	"github.com/reclens-io/reclens/internal/supervisor"
	"github.com/reclens-io/reclens/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "recommend":
		err = runRecommend(args)
	case "import":
		err = runImport(args)
	case "version":
		fmt.Printf("reclens %s (%s)\n", version, runtime.Version())
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "reclens: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "reclens %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: reclens <command> [flags]

Commands:
  serve       run the HTTP API server (default)
  recommend   print recommendations for one user and exit
  import      bulk-load MovieLens CSVs into the DuckDB store
  version     print the build version
`)
}

// loadConfig loads and validates configuration, then initializes logging.
func loadConfig(logFormat string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: format,
		Caller: cfg.Logging.Caller,
	})

	return cfg, nil
}

// engineConfig maps the application configuration onto the engine's own.
func engineConfig(cfg *config.Config) (*recommend.Config, error) {
	metric, err := recommend.ParseMetric(cfg.Recommend.Metric)
	if err != nil {
		return nil, err
	}

	ec := recommend.DefaultConfig()
	ec.Neighbors = cfg.Recommend.Neighbors
	ec.TopN = cfg.Recommend.TopN
	ec.Metric = metric
	ec.Workers = cfg.Recommend.Workers
	ec.Training.Interval = cfg.Recommend.TrainInterval
	ec.Training.MinObservations = cfg.Recommend.MinObservations
	ec.Cache.TTL = cfg.Recommend.CacheTTL
	return ec, nil
}

// newEngine builds the engine with its data provider and, when configured,
// the similarity snapshot store. The returned cleanup closes the database
// if one was opened; db is nil for the CSV source.
func newEngine(cfg *config.Config) (*recommend.Engine, *database.DB, func(), error) {
	ec, err := engineConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	engine, err := recommend.NewEngine(ec, logging.Logger())
	if err != nil {
		return nil, nil, nil, err
	}
	engine.SetModelObserver(metrics.UpdateModelSize)

	cleanup := func() {}
	var db *database.DB

	switch cfg.Data.Source {
	case "duckdb":
		db, err = database.New(&cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		cleanup = func() {
			if cerr := db.Close(); cerr != nil {
				logging.Warn().Err(cerr).Msg("failed to close database")
			}
		}
		engine.SetDataProvider(db)
	default:
		engine.SetDataProvider(movielens.NewLoader(cfg.Data.RatingsPath, cfg.Data.MoviesPath))
	}

	if cfg.Recommend.SnapshotDir != "" {
		store, err := simcache.New(cfg.Recommend.SnapshotDir)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("open snapshot store: %w", err)
		}
		engine.SetSimilarityCache(store)
		engine.SetSnapshotObserver(metrics.RecordSimilarityCacheHit, metrics.RecordSimilarityCacheMiss)
	}

	return engine, db, cleanup, nil
}

// runServe runs the supervised HTTP server until SIGINT or SIGTERM.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	metrics.SetAppInfo(version)
	logging.Info().
		Str("version", version).
		Str("metric", cfg.Recommend.Metric).
		Str("source", cfg.Data.Source).
		Msg("reclens starting")

	engine, db, cleanup, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := api.NewHandler(engine, pinger(db), version)
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.API.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    cfg.API.RateLimitRequests,
		RateLimitWindow:      cfg.API.RateLimitWindow,
		RateLimitDisabled:    cfg.API.RateLimitDisabled,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("build supervisor tree: %w", err)
	}

	tree.AddModelService(services.NewTrainingService(engine, services.TrainingServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		TrainInterval:  cfg.Recommend.TrainInterval,
	}, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("listening")

	err = <-tree.ServeBackground(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}

	logging.Info().Msg("reclens stopped")
	return nil
}

// pinger adapts a possibly-nil *database.DB to the api.Pinger interface.
// A typed nil inside a non-nil interface would defeat the handler's nil
// check, so map nil to nil explicitly.
func pinger(db *database.DB) api.Pinger {
	if db == nil {
		return nil
	}
	return db
}

// runRecommend trains from the configured source and prints one user's
// recommendations to stdout.
func runRecommend(args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	userID := fs.Int("user", 0, "user ID to recommend for (required)")
	n := fs.Int("n", 0, "number of recommendations (default: configured top_n)")
	k := fs.Int("k", 0, "neighborhood size (default: configured neighbors)")
	metric := fs.String("metric", "", "similarity metric: pearson or cosine (default: configured)")
	showNeighbors := fs.Bool("neighbors", false, "also print the neighborhood")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == 0 {
		return errors.New("-user is required")
	}

	// Console logging at warn level keeps stdout clean for the results.
	cfg, err := loadConfig("console")
	if err != nil {
		return err
	}
	if cfg.Logging.Level == "info" {
		logging.Init(logging.Config{Level: "warn", Format: "console"})
	}
	if *metric != "" {
		cfg.Recommend.Metric = *metric
	}

	engine, _, cleanup, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if err := engine.Train(ctx); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	resp, err := engine.Recommend(ctx, recommend.Request{
		UserID: *userID,
		N:      *n,
		K:      *k,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Recommendations for user %d (%s, k=%d):\n",
		*userID, resp.Metadata.Metric, resp.Metadata.K)
	for i, item := range resp.Items {
		fmt.Printf("%3d. %-60s %.2f\n", i+1, item.ItemTitle, item.PredictedRating)
	}
	if len(resp.Items) == 0 {
		fmt.Println("  (no unseen items to recommend)")
	}

	if *showNeighbors {
		fmt.Println("\nNeighbors:")
		for _, nb := range resp.Neighbors {
			fmt.Printf("  user %-6d %.4f\n", nb.UserID, nb.Score)
		}
	}

	return nil
}

// runImport bulk-loads MovieLens CSVs into the DuckDB store.
func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	ratings := fs.String("ratings", "", "ratings.csv path (default: configured ratings_path)")
	movies := fs.String("movies", "", "movies.csv path (default: configured movies_path)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig("console")
	if err != nil {
		return err
	}
	if *ratings == "" {
		*ratings = cfg.Data.RatingsPath
	}
	if *movies == "" {
		*movies = cfg.Data.MoviesPath
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("failed to close database")
		}
	}()

	stats, err := db.ImportMovieLens(context.Background(), *ratings, *movies)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d ratings and %d movies in %s\n",
		stats.RatingsImported, stats.MoviesImported, stats.Duration.Round(time.Millisecond))
	return nil
}
