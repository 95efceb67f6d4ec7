// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reclens-io/reclens/internal/database"
	"github.com/reclens-io/reclens/internal/logging"
	"github.com/reclens-io/reclens/internal/metrics"
	"github.com/reclens-io/reclens/internal/middleware"
	"github.com/reclens-io/reclens/internal/recommend"
)

// requestTimeout bounds a single recommendation request.
const requestTimeout = 10 * time.Second

// trainTimeout bounds a background training run triggered over HTTP.
const trainTimeout = 30 * time.Minute

// Pinger verifies backing storage connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider reports row counts from the backing store. The status
// endpoint includes them when the configured Pinger also implements it.
type StatsProvider interface {
	GetStats(ctx context.Context) (*database.Stats, error)
}

// Handler holds dependencies for the HTTP API handlers.
type Handler struct {
	engine    *recommend.Engine
	db        Pinger
	version   string
	startTime time.Time
}

// NewHandler creates a handler backed by the given engine. db may be nil
// when the engine is fed from CSV files rather than the database.
func NewHandler(engine *recommend.Engine, db Pinger, version string) *Handler {
	return &Handler{
		engine:    engine,
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}

// recommendQuery carries the validated query parameters of a
// recommendation or neighbor request. Zero values mean "use the
// engine's configured default".
type recommendQuery struct {
	K int `validate:"min=0,max=500"`
	N int `validate:"min=0,max=100"`
}

// parseUserID extracts and parses the userID path parameter.
func parseUserID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "userID"))
}

// GetRecommendations handles GET /api/v1/recommendations/{userID}
// Returns top-N ranked recommendations for a user, with the neighborhood
// that produced them.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}

	query := recommendQuery{
		K: getIntParam(r, "k", 0),
		N: getIntParam(r, "n", 0),
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	req := recommend.Request{
		UserID:    userID,
		N:         query.N,
		K:         query.K,
		RequestID: middleware.GetRequestID(r.Context()),
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	metrics.RecordRecommendationServed()

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: resp.Metadata.LatencyMS,
			RequestID:   req.RequestID,
		},
	})
}

// GetNeighbors handles GET /api/v1/neighbors/{userID}
// Returns the user's top-K most similar neighbors without generating
// recommendations.
func (h *Handler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}

	query := recommendQuery{K: getIntParam(r, "k", 0)}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	neighbors, err := h.engine.Neighbors(ctx, userID, query.K)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if neighbors == nil {
		neighbors = []recommend.Neighbor{}
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"user_id":   userID,
			"neighbors": neighbors,
			"count":     len(neighbors),
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
}

// Status handles GET /api/v1/status
// Returns the current training state, engine counters and configuration.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.engine.GetStatus()
	engineMetrics := h.engine.GetMetrics()
	cfg := h.engine.GetConfig()

	data := map[string]interface{}{
		"version":  h.version,
		"uptime":   time.Since(h.startTime).Seconds(),
		"training": status,
		"metrics":  engineMetrics,
		"config":   cfg,
	}

	if sp, ok := h.db.(StatsProvider); ok {
		if stats, err := sp.GetStats(r.Context()); err != nil {
			logging.Warn().Err(err).Msg("failed to load database stats")
		} else {
			data["database"] = stats
		}
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp: time.Now(),
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
}

// Train handles POST /api/v1/train
// Triggers model retraining in the background. Returns 409 if a training
// run is already in progress.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	status := h.engine.GetStatus()
	if status.IsTraining {
		respondError(w, http.StatusConflict, "TRAINING_IN_PROGRESS", "Training is already in progress", nil)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), trainTimeout)
		defer cancel()

		if err := h.engine.Train(ctx); err != nil {
			logging.Error().Err(err).Msg("training failed")
		} else {
			logging.Info().Msg("training completed")
		}
	}()

	respondJSON(w, http.StatusAccepted, &APIResponse{
		Status: "success",
		Data: map[string]string{
			"message": "Training started",
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if a trained model is loaded and the backing store,
// when configured, is reachable. Returns 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	modelReady := h.engine.IsReady()
	dbConnected := h.db == nil || h.db.Ping(r.Context()) == nil
	ready := modelReady && dbConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"model_ready":        modelReady,
			"database_connected": dbConnected,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}
