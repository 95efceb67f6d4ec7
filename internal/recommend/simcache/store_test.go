// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package simcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reclens-io/reclens/internal/recommend"
)

func testMatrix(t *testing.T) *recommend.SimilarityMatrix {
	t.Helper()

	sm, err := recommend.NewSimilarityMatrix(
		[]int{1, 2, 3},
		[][]float64{
			{0, 0.5, 0.3},
			{0.5, 0, 0.7},
			{0.3, 0.7, 0},
		},
	)
	if err != nil {
		t.Fatalf("NewSimilarityMatrix() error = %v", err)
	}
	return sm
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates directory if not exists",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "snapshots")
			},
			wantErr: false,
		},
		{
			name: "uses existing directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			store, err := New(dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && store == nil {
				t.Error("New() returned nil store without error")
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	original := testMatrix(t)

	if err := store.Save(ctx, recommend.MetricPearson, 1, original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx, recommend.MetricPearson, 1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantUsers, wantScores := original.Snapshot()
	gotUsers, gotScores := loaded.Snapshot()

	if !reflect.DeepEqual(gotUsers, wantUsers) {
		t.Errorf("loaded users = %v, want %v", gotUsers, wantUsers)
	}
	if !reflect.DeepEqual(gotScores, wantScores) {
		t.Errorf("loaded scores = %v, want %v", gotScores, wantScores)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("loaded matrix Validate() error = %v", err)
	}
}

func TestStore_LoadLatestWithZeroVersion(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	sm := testMatrix(t)

	for v := 1; v <= 3; v++ {
		if err := store.Save(ctx, recommend.MetricPearson, v, sm); err != nil {
			t.Fatalf("Save(v%d) error = %v", v, err)
		}
	}

	if _, err := store.Load(ctx, recommend.MetricPearson, 0); err != nil {
		t.Errorf("Load(version=0) error = %v, want latest snapshot", err)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := store.Load(context.Background(), recommend.MetricPearson, 0); err == nil {
		t.Error("Load() on empty store = nil error, want error")
	}
	if _, err := store.Load(context.Background(), recommend.MetricPearson, 7); err == nil {
		t.Error("Load(missing version) = nil error, want error")
	}
}

func TestStore_SaveNilMatrix(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := store.Save(context.Background(), recommend.MetricPearson, 1, nil); err == nil {
		t.Error("Save(nil matrix) = nil error, want error")
	}
}

func TestStore_SaveReportsWriteFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Pull the directory out from under the store so the write fails.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}

	if err := store.Save(context.Background(), recommend.MetricPearson, 1, testMatrix(t)); err == nil {
		t.Fatal("Save() = nil error with the snapshot directory gone, want error")
	}
	if _, ok := store.LatestVersion(recommend.MetricPearson); ok {
		t.Error("LatestVersion() reports a version after a failed save")
	}
}

func TestStore_LatestVersion(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, ok := store.LatestVersion(recommend.MetricPearson); ok {
		t.Error("LatestVersion() on empty store = true, want false")
	}

	ctx := context.Background()
	sm := testMatrix(t)

	if err := store.Save(ctx, recommend.MetricPearson, 1, sm); err != nil {
		t.Fatalf("Save(v1) error = %v", err)
	}
	if err := store.Save(ctx, recommend.MetricPearson, 2, sm); err != nil {
		t.Fatalf("Save(v2) error = %v", err)
	}
	if err := store.Save(ctx, recommend.MetricCosine, 5, sm); err != nil {
		t.Fatalf("Save(cosine v5) error = %v", err)
	}

	if version, ok := store.LatestVersion(recommend.MetricPearson); !ok || version != 2 {
		t.Errorf("LatestVersion(pearson) = %d, %v, want 2, true", version, ok)
	}
	if version, ok := store.LatestVersion(recommend.MetricCosine); !ok || version != 5 {
		t.Errorf("LatestVersion(cosine) = %d, %v, want 5, true", version, ok)
	}
}

func TestStore_ScanExistingSnapshots(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := first.Save(ctx, recommend.MetricPearson, 3, testMatrix(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A fresh store over the same directory indexes what is on disk.
	second, err := New(dir)
	if err != nil {
		t.Fatalf("New() over existing directory error = %v", err)
	}

	if version, ok := second.LatestVersion(recommend.MetricPearson); !ok || version != 3 {
		t.Errorf("LatestVersion() after rescan = %d, %v, want 3, true", version, ok)
	}
	if _, err := second.Load(ctx, recommend.MetricPearson, 0); err != nil {
		t.Errorf("Load() after rescan error = %v", err)
	}
}

func TestStore_Prune(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	sm := testMatrix(t)

	for v := 1; v <= 4; v++ {
		if err := store.Save(ctx, recommend.MetricPearson, v, sm); err != nil {
			t.Fatalf("Save(v%d) error = %v", v, err)
		}
	}

	if err := store.Prune(ctx, recommend.MetricPearson, 2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	for _, v := range []int{1, 2} {
		path := filepath.Join(dir, fmt.Sprintf("pearson_v%d.gob.gz", v))
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("snapshot v%d still exists after prune", v)
		}
	}
	for _, v := range []int{3, 4} {
		if _, err := store.Load(ctx, recommend.MetricPearson, v); err != nil {
			t.Errorf("Load(v%d) after prune error = %v", v, err)
		}
	}

	if version, ok := store.LatestVersion(recommend.MetricPearson); !ok || version != 4 {
		t.Errorf("LatestVersion() after prune = %d, %v, want 4, true", version, ok)
	}

	// Pruning a metric with no snapshots is a no-op.
	if err := store.Prune(ctx, recommend.MetricCosine, 2); err != nil {
		t.Errorf("Prune(absent metric) error = %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	sm := testMatrix(t)

	if err := store.Save(ctx, recommend.MetricPearson, 1, sm); err != nil {
		t.Fatalf("Save(v1) error = %v", err)
	}
	if err := store.Save(ctx, recommend.MetricPearson, 2, sm); err != nil {
		t.Fatalf("Save(v2) error = %v", err)
	}

	if err := store.Delete(ctx, recommend.MetricPearson, 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Deleting the newest version falls back to the previous one.
	if version, ok := store.LatestVersion(recommend.MetricPearson); !ok || version != 1 {
		t.Errorf("LatestVersion() after delete = %d, %v, want 1, true", version, ok)
	}

	if err := store.Delete(ctx, recommend.MetricPearson, 1); err != nil {
		t.Fatalf("Delete(v1) error = %v", err)
	}
	if _, ok := store.LatestVersion(recommend.MetricPearson); ok {
		t.Error("LatestVersion() = true after deleting every version")
	}

	if err := store.Delete(ctx, recommend.MetricPearson, 9); err == nil {
		t.Error("Delete(missing version) = nil error, want error")
	}
}

func TestStore_List(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()

	empty, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List() on empty store = %v, want empty", empty)
	}

	if err := store.Save(ctx, recommend.MetricPearson, 1, testMatrix(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snapshots, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(snapshots))
	}

	meta := snapshots[0]
	if meta.Metric != "pearson" {
		t.Errorf("Metric = %q, want \"pearson\"", meta.Metric)
	}
	if meta.Version != 1 {
		t.Errorf("Version = %d, want 1", meta.Version)
	}
	if meta.UserCount != 3 {
		t.Errorf("UserCount = %d, want 3", meta.UserCount)
	}
	if meta.Checksum == "" {
		t.Error("Checksum should not be empty")
	}
	if meta.SizeBytes == 0 {
		t.Error("SizeBytes should not be zero")
	}
	if meta.SavedAt.IsZero() {
		t.Error("SavedAt should not be zero")
	}
}

func TestStore_CorruptedSnapshot(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, recommend.MetricPearson, 1, testMatrix(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(dir, "pearson_v1.gob.gz")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := store.Load(ctx, recommend.MetricPearson, 1); err == nil {
		t.Error("Load(corrupted snapshot) = nil error, want error")
	}
}

func TestParseSnapshotFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantMetric  string
		wantVersion int
		wantOK      bool
	}{
		{"compressed snapshot", "pearson_v3.gob.gz", "pearson", 3, true},
		{"uncompressed snapshot", "cosine_v12.gob", "cosine", 12, true},
		{"metric with underscore", "adjusted_cosine_v2.gob.gz", "adjusted_cosine", 2, true},
		{"no version marker", "pearson.gob.gz", "", 0, false},
		{"empty metric", "_v1.gob.gz", "", 0, false},
		{"non-numeric version", "pearson_vX.gob.gz", "", 0, false},
		{"unrelated file", "readme.txt", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metric, version, ok := parseSnapshotFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("parseSnapshotFilename(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if metric != tt.wantMetric || version != tt.wantVersion {
				t.Errorf("parseSnapshotFilename(%q) = %q, %d, want %q, %d",
					tt.filename, metric, version, tt.wantMetric, tt.wantVersion)
			}
		})
	}
}

// staticProvider feeds a fixed observation set to the engine.
type staticProvider struct {
	observations []recommend.Observation
}

func (p staticProvider) LoadObservations(_ context.Context) ([]recommend.Observation, error) {
	return p.observations, nil
}

func TestStore_RestoresEngineAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	provider := staticProvider{observations: []recommend.Observation{
		{UserID: 1, ItemID: 1, ItemTitle: "A", Rating: 5},
		{UserID: 1, ItemID: 2, ItemTitle: "B", Rating: 3},
		{UserID: 2, ItemID: 1, ItemTitle: "A", Rating: 5},
		{UserID: 2, ItemID: 2, ItemTitle: "B", Rating: 3},
		{UserID: 2, ItemID: 3, ItemTitle: "C", Rating: 4},
		{UserID: 3, ItemID: 1, ItemTitle: "A", Rating: 1},
		{UserID: 3, ItemID: 2, ItemTitle: "B", Rating: 5},
	}}

	boot := func() *recommend.Engine {
		store, err := New(dir)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		engine, err := recommend.NewEngine(nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		engine.SetDataProvider(provider)
		engine.SetSimilarityCache(store)
		if err := engine.Train(ctx); err != nil {
			t.Fatalf("Train() error = %v", err)
		}
		return engine
	}

	first := boot()
	second := boot()

	respA, err := first.Recommend(ctx, recommend.Request{UserID: 1})
	if err != nil {
		t.Fatalf("first engine Recommend() error = %v", err)
	}
	respB, err := second.Recommend(ctx, recommend.Request{UserID: 1})
	if err != nil {
		t.Fatalf("second engine Recommend() error = %v", err)
	}

	if !reflect.DeepEqual(respA.Items, respB.Items) {
		t.Errorf("recommendations differ across restarts: %v vs %v", respA.Items, respB.Items)
	}
}
