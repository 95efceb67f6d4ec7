// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/status", "200"))

	RecordAPIRequest("GET", "/api/v1/status", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/status", "200"))
	if after != before+1 {
		t.Errorf("requests total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests after increment = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests after decrement = %v, want %v", got, before)
	}
}

func TestRecordTrainingRun(t *testing.T) {
	successBefore := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("success"))
	failureBefore := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("failure"))

	RecordTrainingRun(true, 2*time.Second)
	RecordTrainingRun(false, time.Second)

	if got := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("success")); got != successBefore+1 {
		t.Errorf("success runs = %v, want %v", got, successBefore+1)
	}
	if got := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("failure")); got != failureBefore+1 {
		t.Errorf("failure runs = %v, want %v", got, failureBefore+1)
	}
	if got := testutil.ToFloat64(LastTrainingTimestamp); got == 0 {
		t.Error("last training timestamp should be set after a successful run")
	}
}

func TestUpdateModelSize(t *testing.T) {
	UpdateModelSize(610, 9724)

	if got := testutil.ToFloat64(ModelUserCount); got != 610 {
		t.Errorf("model users = %v, want 610", got)
	}
	if got := testutil.ToFloat64(ModelItemCount); got != 9724 {
		t.Errorf("model items = %v, want 9724", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "ratings"))

	RecordDBQuery("select", "ratings", 5*time.Millisecond, nil)
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "ratings")); got != errBefore {
		t.Errorf("error count after successful query = %v, want %v", got, errBefore)
	}

	RecordDBQuery("select", "ratings", 5*time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "ratings")); got != errBefore+1 {
		t.Errorf("error count after failed query = %v, want %v", got, errBefore+1)
	}
}

func TestSimilarityCacheCounters(t *testing.T) {
	hitsBefore := testutil.ToFloat64(SimilarityCacheHits)
	missesBefore := testutil.ToFloat64(SimilarityCacheMisses)

	RecordSimilarityCacheHit()
	RecordSimilarityCacheMiss()

	if got := testutil.ToFloat64(SimilarityCacheHits); got != hitsBefore+1 {
		t.Errorf("cache hits = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(SimilarityCacheMisses); got != missesBefore+1 {
		t.Errorf("cache misses = %v, want %v", got, missesBefore+1)
	}
}

func TestRecordRecommendationError(t *testing.T) {
	before := testutil.ToFloat64(RecommendationErrors.WithLabelValues("UNKNOWN_USER"))

	RecordRecommendationError("UNKNOWN_USER")

	if got := testutil.ToFloat64(RecommendationErrors.WithLabelValues("UNKNOWN_USER")); got != before+1 {
		t.Errorf("recommendation errors = %v, want %v", got, before+1)
	}
}
