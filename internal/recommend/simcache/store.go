// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package simcache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/reclens-io/reclens/internal/recommend"
)

// SnapshotMetadata describes a stored similarity snapshot.
type SnapshotMetadata struct {
	// Metric is the similarity metric the snapshot was computed with.
	Metric string `json:"metric"`

	// Version is the snapshot version (monotonically increasing).
	Version int `json:"version"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// UserCount is the number of users covered by the matrix.
	UserCount int `json:"user_count"`

	// Checksum is the SHA-256 checksum of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed snapshot size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// snapshotPayload is the gob-encoded matrix content.
type snapshotPayload struct {
	Users  []int
	Scores [][]float64
}

// storedFile is the on-disk format for snapshot files.
type storedFile struct {
	Metadata       SnapshotMetadata
	CompressedData []byte
}

// Store manages similarity snapshot persistence. It implements the
// engine's SimilarityCache interface.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// Latest version per metric
	versions map[string]int
}

var _ recommend.SimilarityCache = (*Store)(nil)

// New creates a snapshot store at the given directory, creating it if
// needed and indexing any snapshots already present.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for snapshot storage
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanSnapshots(); err != nil {
		return nil, fmt.Errorf("scan existing snapshots: %w", err)
	}

	return s, nil
}

// scanSnapshots indexes the snapshot directory by metric and version.
func (s *Store) scanSnapshots() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		metric, version, ok := parseSnapshotFilename(entry.Name())
		if !ok {
			continue
		}

		if current, exists := s.versions[metric]; !exists || version > current {
			s.versions[metric] = version
		}
	}

	return nil
}

// parseSnapshotFilename extracts metric and version from a filename like
// "pearson_v3.gob.gz".
func parseSnapshotFilename(name string) (metric string, version int, ok bool) {
	switch {
	case len(name) > 7 && name[len(name)-7:] == ".gob.gz":
		name = name[:len(name)-7]
	case len(name) > 4 && name[len(name)-4:] == ".gob":
		name = name[:len(name)-4]
	default:
		return "", 0, false
	}

	// Split on the last "_v" so metric names may contain underscores.
	sep := -1
	for i := len(name) - 1; i >= 1; i-- {
		if name[i] == 'v' && name[i-1] == '_' {
			sep = i - 1
			break
		}
	}
	if sep < 1 {
		return "", 0, false
	}

	metric = name[:sep]
	if _, err := fmt.Sscanf(name[sep+2:], "%d", &version); err != nil {
		return "", 0, false
	}

	return metric, version, true
}

// LatestVersion returns the newest stored version for a metric.
func (s *Store) LatestVersion(metric recommend.Metric) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[metric.String()]
	return version, ok
}

// Save persists a similarity matrix under a metric and version.
func (s *Store) Save(_ context.Context, metric recommend.Metric, version int, sm *recommend.SimilarityMatrix) error {
	if sm == nil {
		return fmt.Errorf("nil similarity matrix")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, scores := sm.Snapshot()
	payload := snapshotPayload{Users: users, Scores: scores}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedFile{
		Metadata: SnapshotMetadata{
			Metric:    metric.String(),
			Version:   version,
			SavedAt:   time.Now(),
			UserCount: len(users),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	filename := s.snapshotPath(metric.String(), version)
	f, err := os.Create(filename) //nolint:gosec // filename is constructed from the validated metric name
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		_ = f.Close() //nolint:errcheck // the encode error takes precedence
		return fmt.Errorf("write snapshot file: %w", err)
	}

	// A short write can surface only at close; swallowing it would
	// report a successful save for a truncated snapshot.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}

	if current, ok := s.versions[metric.String()]; !ok || version > current {
		s.versions[metric.String()] = version
	}

	return nil
}

// Load restores a stored similarity matrix. A version of 0 loads the
// latest version for the metric.
func (s *Store) Load(_ context.Context, metric recommend.Metric, version int) (*recommend.SimilarityMatrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[metric.String()]
		if !ok {
			return nil, fmt.Errorf("no snapshot found for metric %s", metric)
		}
	}

	filename := s.snapshotPath(metric.String(), version)
	f, err := os.Open(filename) //nolint:gosec // filename is constructed from the validated metric name
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	var payload snapshotPayload
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	sm, err := recommend.NewSimilarityMatrix(payload.Users, payload.Scores)
	if err != nil {
		return nil, fmt.Errorf("rebuild similarity matrix: %w", err)
	}

	return sm, nil
}

// List returns metadata for all stored snapshots at their latest version.
func (s *Store) List(_ context.Context) ([]SnapshotMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snapshots []SnapshotMetadata

	for metric, version := range s.versions {
		filename := s.snapshotPath(metric, version)
		f, err := os.Open(filename) //nolint:gosec // filename is constructed from indexed entries
		if err != nil {
			continue
		}

		var sf storedFile
		err = gob.NewDecoder(f).Decode(&sf)
		_ = f.Close() //nolint:errcheck // error on close after read is not actionable
		if err != nil {
			continue
		}

		snapshots = append(snapshots, sf.Metadata)
	}

	return snapshots, nil
}

// Delete removes a specific snapshot version and reindexes the latest
// version for the metric.
func (s *Store) Delete(_ context.Context, metric recommend.Metric, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.snapshotPath(metric.String(), version)
	if err := os.Remove(filename); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	if s.versions[metric.String()] != version {
		return nil
	}

	// The latest version was removed; rescan for the next newest.
	delete(s.versions, metric.String())
	remaining, err := s.versionsOf(metric.String())
	if err != nil {
		return fmt.Errorf("reindex snapshots: %w", err)
	}
	if len(remaining) > 0 {
		s.versions[metric.String()] = remaining[0]
	}

	return nil
}

// Prune removes old snapshot versions, keeping the newest keep versions.
func (s *Store) Prune(_ context.Context, metric recommend.Metric, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}

	if _, ok := s.versions[metric.String()]; !ok {
		return nil
	}

	versions, err := s.versionsOf(metric.String())
	if err != nil {
		return fmt.Errorf("read snapshot directory: %w", err)
	}

	for i := keep; i < len(versions); i++ {
		filename := s.snapshotPath(metric.String(), versions[i])
		_ = os.Remove(filename) //nolint:errcheck // best-effort cleanup of old versions
	}

	return nil
}

// versionsOf returns the on-disk versions for a metric, newest first.
func (s *Store) versionsOf(metric string) ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m, v, ok := parseSnapshotFilename(entry.Name())
		if !ok || m != metric {
			continue
		}
		versions = append(versions, v)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// snapshotPath returns the file path for a snapshot.
func (s *Store) snapshotPath(metric string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", metric, version))
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(SnapshotMetadata{})
	gob.Register(snapshotPayload{})
	gob.Register(storedFile{})
}
