// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/reclens-io/reclens/internal/metrics"
)

func TestPrometheusMetricsRecordsRequest(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/test-metrics", "200"))

	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test-metrics", nil))

	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/test-metrics", "200"))
	if after != before+1 {
		t.Errorf("requests total = %v, want %v", after, before+1)
	}
}

func TestPrometheusMetricsCapturesStatus(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/test-notfound", "404"))

	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test-notfound", nil))

	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/test-notfound", "404"))
	if after != before+1 {
		t.Errorf("404 requests total = %v, want %v", after, before+1)
	}
}

func TestPrometheusMetricsDefaultStatus(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/test-implicit", "200"))

	// Handler writes a body without calling WriteHeader; status defaults to 200.
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test-implicit", nil))

	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues("GET", "/test-implicit", "200"))
	if after != before+1 {
		t.Errorf("implicit 200 requests total = %v, want %v", after, before+1)
	}
}
