// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestGenerateETagDeterministic(t *testing.T) {
	data := []byte(`{"status":"success"}`)
	if generateETag(data) != generateETag(data) {
		t.Error("same payload should produce the same ETag")
	}
	if generateETag(data) == generateETag([]byte(`{"status":"error"}`)) {
		t.Error("different payloads should produce different ETags")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: "user 42", want: "user 42"},
		{name: "newline", in: "a\nb", want: "a\\x0ab"},
		{name: "carriage return", in: "a\rb", want: "a\\x0db"},
		{name: "tab", in: "a\tb", want: "a\\x09b"},
		{name: "unicode preserved", in: "Amélie (2001)", want: "Amélie (2001)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogValue(tt.in); got != tt.want {
				t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRespondJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]int{"n": 1},
		Metadata: Metadata{Timestamp: time.Now()},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag missing")
	}
}

func TestGetIntParam(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "present", query: "k=7", want: 7},
		{name: "missing", query: "", want: 3},
		{name: "not a number", query: "k=abc", want: 3},
		{name: "negative", query: "k=-2", want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{URL: &url.URL{RawQuery: tt.query}}
			if got := getIntParam(r, "k", 3); got != tt.want {
				t.Errorf("getIntParam() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateRequestBounds(t *testing.T) {
	if apiErr := validateRequest(&recommendQuery{K: 40, N: 10}); apiErr != nil {
		t.Errorf("validateRequest() = %+v, want nil", apiErr)
	}
	if apiErr := validateRequest(&recommendQuery{K: 501}); apiErr == nil {
		t.Error("validateRequest() = nil for k over limit, want error")
	} else if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
}
