// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages to
// maintain clean separation. The DataProvider and SimilarityCache
// interfaces allow integration with the database and cache layers
// without creating circular imports.

// neighborDisplayLimit caps the neighborhood echoed back in responses.
const neighborDisplayLimit = 10

// Engine runs the collaborative filtering pipeline end to end: it trains
// the model from a DataProvider and serves ranked recommendations from
// the trained snapshot. It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Trained model, swapped atomically on retrain
	model   *model
	modelMu sync.RWMutex

	// Training state
	trainMu      sync.Mutex
	trainStatus  TrainingStatus
	statusMu     sync.RWMutex
	modelVersion atomic.Int32

	// Counters
	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	errorCount    atomic.Int64
	trainingCount atomic.Int64

	// Response cache
	cache   map[string]cacheEntry
	cacheMu sync.RWMutex

	// Data access
	dataProvider DataProvider
	simCache     SimilarityCache

	// Observability hooks, wired by the application layer before training
	onSnapshotHit  func()
	onSnapshotMiss func()
	onModelUpdate  func(users, items int)
}

// model bundles the artifacts of one training run.
type model struct {
	store      *RatingStore
	matrix     *InteractionMatrix
	similarity *SimilarityMatrix
	metric     Metric
	version    int
	trainedAt  time.Time
}

// cacheEntry holds a cached recommendation response.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// DataProvider defines the interface for fetching training data.
// This is typically implemented by the database layer.
type DataProvider interface {
	// LoadObservations returns all rating observations for training.
	LoadObservations(ctx context.Context) ([]Observation, error)
}

// SimilarityCache persists similarity matrices across restarts, keyed
// by metric and version.
type SimilarityCache interface {
	// LatestVersion returns the newest stored version for a metric.
	LatestVersion(metric Metric) (int, bool)

	// Load restores a stored similarity matrix.
	Load(ctx context.Context, metric Metric, version int) (*SimilarityMatrix, error)

	// Save persists a similarity matrix under a metric and version.
	Save(ctx context.Context, metric Metric, version int, sm *SimilarityMatrix) error

	// Prune removes old versions, keeping the newest keep versions.
	Prune(ctx context.Context, metric Metric, keep int) error
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		cache:  make(map[string]cacheEntry),
	}, nil
}

// SetDataProvider sets the data provider for training.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetSimilarityCache sets the similarity snapshot cache.
func (e *Engine) SetSimilarityCache(sc SimilarityCache) {
	e.simCache = sc
}

// SetSnapshotObserver registers callbacks invoked when a training run
// restores a cached similarity snapshot (hit) or has to recompute one
// (miss). Lets the application layer publish cache metrics without
// coupling this package to a metrics implementation.
func (e *Engine) SetSnapshotObserver(onHit, onMiss func()) {
	e.onSnapshotHit = onHit
	e.onSnapshotMiss = onMiss
}

// SetModelObserver registers a callback invoked with the model
// dimensions after every successful training run.
func (e *Engine) SetModelObserver(fn func(users, items int)) {
	e.onModelUpdate = fn
}

// Recommend generates recommendations for a user. Zero values in the
// request fall back to configured defaults; values above the configured
// limits are clamped.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.requestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	if resp := e.tryGetCachedResponse(req, start, logger); resp != nil {
		return resp, nil
	}

	m, err := e.currentModel()
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	neighbors, err := SelectNeighbors(m.similarity, req.UserID, req.K)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("select neighbors: %w", err)
	}

	predictions, err := PredictRatings(m.store, neighbors, req.UserID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("predict ratings: %w", err)
	}

	items := TopN(predictions, req.N)

	resp := e.buildResponse(req, m, items, neighbors, len(predictions), start)
	e.cacheResponse(req, resp)

	logger.Debug().
		Int("neighbors", len(neighbors)).
		Int("candidates", len(predictions)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// Neighbors returns the k most similar users to the target. A zero k
// falls back to the configured default.
func (e *Engine) Neighbors(ctx context.Context, userID, k int) ([]Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := e.currentModel()
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	if k == 0 {
		k = e.config.Neighbors
	}
	if k > e.config.Limits.MaxNeighbors {
		k = e.config.Limits.MaxNeighbors
	}

	neighbors, err := SelectNeighbors(m.similarity, userID, k)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("select neighbors: %w", err)
	}

	return neighbors, nil
}

// prepareRequest applies defaults, clamps limits, and assigns a request
// ID if missing.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if req.K == 0 {
		req.K = e.config.Neighbors
	}
	if req.K > e.config.Limits.MaxNeighbors {
		req.K = e.config.Limits.MaxNeighbors
	}

	if req.N == 0 {
		req.N = e.config.TopN
	}
	if req.N > e.config.Limits.MaxTopN {
		req.N = e.config.Limits.MaxTopN
	}

	return req
}

// requestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) requestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int("user_id", req.UserID).
		Int("k", req.K).
		Int("n", req.N).
		Logger()
}

// currentModel returns the trained model snapshot.
func (e *Engine) currentModel() (*model, error) {
	e.modelMu.RLock()
	defer e.modelMu.RUnlock()

	if e.model == nil {
		return nil, ErrNotTrained
	}
	return e.model, nil
}

// IsReady reports whether a trained model is available.
func (e *Engine) IsReady() bool {
	e.modelMu.RLock()
	defer e.modelMu.RUnlock()
	return e.model != nil
}

// buildResponse constructs the final response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, m *model, items []Recommendation, neighbors []Neighbor, candidates int, start time.Time) *Response {
	display := neighbors
	if len(display) > neighborDisplayLimit {
		display = display[:neighborDisplayLimit]
	}
	shown := make([]Neighbor, len(display))
	copy(shown, display)

	return &Response{
		Items:     items,
		Neighbors: shown,
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			UserID:         req.UserID,
			Metric:         m.metric.String(),
			K:              req.K,
			N:              req.N,
			CandidateCount: candidates,
			LatencyMS:      time.Since(start).Milliseconds(),
			ModelVersion:   m.version,
			TrainedAt:      m.trainedAt,
			Timestamp:      time.Now(),
		},
	}
}

// Train trains the model from the data provider. Returns immediately
// with an error if training is already in progress.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return fmt.Errorf("training already in progress")
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return fmt.Errorf("data provider not set")
	}

	start := time.Now()
	e.setTrainingStarted()
	e.logger.Info().Str("metric", e.config.Metric.String()).Msg("starting model training")

	defer e.setTrainingFinished(start)

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	observations, err := e.dataProvider.LoadObservations(trainCtx)
	if err != nil {
		err = fmt.Errorf("load observations: %w", err)
		e.setTrainingError(err)
		return err
	}

	if len(observations) < e.config.Training.MinObservations {
		err = fmt.Errorf("insufficient observations: %d < %d: %w",
			len(observations), e.config.Training.MinObservations, ErrInvalidInput)
		e.setTrainingError(err)
		return err
	}

	store, err := NewRatingStore(observations)
	if err != nil {
		err = fmt.Errorf("build rating store: %w", err)
		e.setTrainingError(err)
		return err
	}

	matrix, err := BuildInteractionMatrix(store)
	if err != nil {
		err = fmt.Errorf("build interaction matrix: %w", err)
		e.setTrainingError(err)
		return err
	}

	similarity, err := e.obtainSimilarity(trainCtx, matrix)
	if err != nil {
		err = fmt.Errorf("obtain similarity: %w", err)
		e.setTrainingError(err)
		return err
	}

	version := int(e.modelVersion.Add(1))
	trainedAt := time.Now()

	e.modelMu.Lock()
	e.model = &model{
		store:      store,
		matrix:     matrix,
		similarity: similarity,
		metric:     e.config.Metric,
		version:    version,
		trainedAt:  trainedAt,
	}
	e.modelMu.Unlock()

	e.trainingCount.Add(1)
	e.setTrainingComplete(store, version, trainedAt)

	if e.onModelUpdate != nil {
		e.onModelUpdate(store.UserCount(), store.ItemCount())
	}

	if e.config.Cache.InvalidateOnTrain {
		e.clearCache()
	}

	e.logger.Info().
		Int("version", version).
		Int("users", store.UserCount()).
		Int("items", store.ItemCount()).
		Int("observations", store.ObservationCount()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model training complete")

	return nil
}

// obtainSimilarity loads a cached similarity snapshot when one matches
// the current user population, computing and persisting a fresh matrix
// otherwise. Cached snapshots failing integrity checks are discarded.
func (e *Engine) obtainSimilarity(ctx context.Context, matrix *InteractionMatrix) (*SimilarityMatrix, error) {
	metric := e.config.Metric

	if e.simCache != nil {
		if version, ok := e.simCache.LatestVersion(metric); ok {
			sm, err := e.simCache.Load(ctx, metric, version)
			if err == nil {
				err = e.checkCachedSimilarity(sm, matrix)
			}
			if err == nil {
				if e.onSnapshotHit != nil {
					e.onSnapshotHit()
				}
				e.logger.Info().
					Str("metric", metric.String()).
					Int("snapshot_version", version).
					Msg("similarity matrix loaded from cache")
				return sm, nil
			}
			e.logger.Warn().
				Err(err).
				Str("metric", metric.String()).
				Int("snapshot_version", version).
				Msg("cached similarity matrix rejected, recomputing")
		}
	}

	// Every path through here recomputes: either no cache is configured
	// with a usable snapshot, or the cached one was rejected above.
	if e.simCache != nil && e.onSnapshotMiss != nil {
		e.onSnapshotMiss()
	}

	sm, err := ComputeSimilarity(ctx, matrix, metric, e.config.Workers)
	if err != nil {
		return nil, err
	}

	if e.simCache != nil {
		version := 1
		if latest, ok := e.simCache.LatestVersion(metric); ok {
			version = latest + 1
		}
		if err := e.simCache.Save(ctx, metric, version, sm); err != nil {
			e.logger.Warn().Err(err).Msg("similarity snapshot save failed")
		} else if err := e.simCache.Prune(ctx, metric, e.config.Training.RetainVersions); err != nil {
			e.logger.Warn().Err(err).Msg("similarity snapshot prune failed")
		}
	}

	return sm, nil
}

// checkCachedSimilarity verifies a cached snapshot covers the current
// user population and passes integrity validation.
func (e *Engine) checkCachedSimilarity(sm *SimilarityMatrix, matrix *InteractionMatrix) error {
	current := matrix.Users()
	cached := sm.Users()

	if len(cached) != len(current) {
		return fmt.Errorf("user count changed: cached %d, current %d", len(cached), len(current))
	}
	for i := range current {
		if cached[i] != current[i] {
			return fmt.Errorf("user population changed at position %d", i)
		}
	}

	return sm.Validate()
}

// setTrainingStarted marks training as in progress.
func (e *Engine) setTrainingStarted() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = true
	e.trainStatus.LastError = ""
}

// setTrainingFinished records training duration and clears the flag.
func (e *Engine) setTrainingFinished(start time.Time) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = false
	e.trainStatus.LastTrainingDurationMS = time.Since(start).Milliseconds()
}

// setTrainingError records a failed training run.
func (e *Engine) setTrainingError(err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.LastError = err.Error()
}

// setTrainingComplete records the outcome of a successful training run.
func (e *Engine) setTrainingComplete(store *RatingStore, version int, trainedAt time.Time) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.LastTrainedAt = trainedAt
	e.trainStatus.ObservationCount = store.ObservationCount()
	e.trainStatus.UserCount = store.UserCount()
	e.trainStatus.ItemCount = store.ItemCount()
	e.trainStatus.Metric = e.config.Metric.String()
	e.trainStatus.ModelVersion = version
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	return e.trainStatus
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:  e.requestCount.Load(),
		CacheHits:     e.cacheHits.Load(),
		CacheMisses:   e.cacheMisses.Load(),
		TrainingCount: e.trainingCount.Load(),
		ErrorCount:    e.errorCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// tryGetCachedResponse attempts to retrieve a cached response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(req Request, start time.Time, logger zerolog.Logger) *Response {
	if !e.config.Cache.Enabled {
		return nil
	}

	resp := e.checkCache(e.cacheKey(req))
	if resp == nil {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().Msg("response cache hit")
	return resp
}

// cacheResponse stores the response in cache if enabled.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(req Request, resp *Response) {
	if e.config.Cache.Enabled {
		e.storeCache(e.cacheKey(req), resp)
	}
}

// cacheKey generates a cache key for a request.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request) string {
	return fmt.Sprintf("rec:%d:%d:%d", req.UserID, req.K, req.N)
}

// checkCache returns a copy of a valid cached response, or nil.
func (e *Engine) checkCache(key string) *Response {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	entry, ok := e.cache[key]
	if !ok {
		return nil
	}

	if time.Now().After(entry.expiresAt) {
		return nil
	}

	return e.copyCachedResponse(entry.response)
}

// copyCachedResponse creates a copy of a cached response so callers
// cannot mutate the cached entry.
func (e *Engine) copyCachedResponse(resp *Response) *Response {
	items := make([]Recommendation, len(resp.Items))
	copy(items, resp.Items)

	neighbors := make([]Neighbor, len(resp.Neighbors))
	copy(neighbors, resp.Neighbors)

	return &Response{
		Items:     items,
		Neighbors: neighbors,
		Metadata:  resp.Metadata,
	}
}

// storeCache stores a response in the cache.
func (e *Engine) storeCache(key string, resp *Response) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(e.cache) >= e.config.Cache.MaxEntries {
		e.evictExpiredLocked()
	}

	e.cache[key] = cacheEntry{
		response:  resp,
		expiresAt: time.Now().Add(e.config.Cache.TTL),
	}
}

// clearCache removes all cached entries.
func (e *Engine) clearCache() {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	e.cache = make(map[string]cacheEntry)
	e.logger.Debug().Msg("response cache cleared")
}

// evictExpiredLocked removes expired cache entries.
// Must be called with cacheMu held.
func (e *Engine) evictExpiredLocked() {
	now := time.Now()
	for key, entry := range e.cache {
		if now.After(entry.expiresAt) {
			delete(e.cache, key)
		}
	}
}
