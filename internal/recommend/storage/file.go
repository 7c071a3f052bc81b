// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const modelFileSuffix = ".gob.gz"

// FileStore keeps one file per model version in a directory:
//
//	{name}_v{version}.gob.gz
type FileStore struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per name
	versions map[string]int
}

// NewFileStore opens (creating if needed) a model directory.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &FileStore{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	return s, nil
}

func (s *FileStore) scanModels() error {
	all, err := s.allVersions()
	if err != nil {
		return err
	}
	for name, vs := range all {
		s.versions[name] = vs[0]
	}
	return nil
}

// allVersions lists every stored version per name, newest first.
func (s *FileStore) allVersions() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), modelFileSuffix) {
			continue
		}
		name, version, ok := parseModelFilename(strings.TrimSuffix(entry.Name(), modelFileSuffix))
		if !ok {
			continue
		}
		out[name] = append(out[name], version)
	}
	for name := range out {
		sort.Sort(sort.Reverse(sort.IntSlice(out[name])))
	}
	return out, nil
}

// parseModelFilename splits "default_v12" into ("default", 12).
func parseModelFilename(base string) (name string, version int, ok bool) {
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	v, err := strconv.Atoi(base[idx+2:])
	if err != nil || v <= 0 {
		return "", 0, false
	}
	return base[:idx], v, true
}

// Save implements Store. The file is written to a temporary name and renamed
// so readers never observe a partial model.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *FileStore) Save(ctx context.Context, snap *Snapshot, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meta.Name == "" || strings.ContainsAny(meta.Name, `/\`) {
		return fmt.Errorf("invalid model name %q", meta.Name)
	}
	if meta.Version <= 0 {
		return fmt.Errorf("invalid model version %d", meta.Version)
	}

	compressed, err := encodeSnapshot(snap, &meta)
	if err != nil {
		return err
	}
	meta.SavedAt = time.Now()

	data, err := marshalRecord(&storedFile{Metadata: meta, CompressedData: compressed})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.modelPath(meta.Name, meta.Version)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil { //nolint:gosec // 0640 is acceptable for model files
		return fmt.Errorf("write model file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename model file: %w", err)
	}

	if current, ok := s.versions[meta.Name]; !ok || meta.Version > current {
		s.versions[meta.Name] = meta.Version
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, name string, version int) (*Snapshot, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		v, ok := s.versions[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
		version = v
	}

	sf, err := s.readRecord(name, version)
	if err != nil {
		return nil, nil, err
	}

	snap, err := decodeSnapshot(sf.CompressedData, sf.Metadata.Checksum)
	if err != nil {
		return nil, nil, err
	}
	return snap, &sf.Metadata, nil
}

func (s *FileStore) readRecord(name string, version int) (*storedFile, error) {
	data, err := os.ReadFile(s.modelPath(name, version))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	return unmarshalRecord(bytes.NewReader(data))
}

// LatestVersion implements Store.
func (s *FileStore) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[name]
	return v, ok
}

// Versions implements Store.
func (s *FileStore) Versions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.allVersions()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	return all[name], nil
}

// List implements Store. Unreadable files are skipped.
func (s *FileStore) List(_ context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Metadata, 0, len(s.versions))
	for name, version := range s.versions {
		sf, err := s.readRecord(name, version)
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

// Prune implements Store.
func (s *FileStore) Prune(_ context.Context, name string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}

	all, err := s.allVersions()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	versions := all[name]
	for i := keep; i < len(versions); i++ {
		_ = os.Remove(s.modelPath(name, versions[i])) //nolint:errcheck // best-effort cleanup of old versions
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, modelFileSuffix))
}

var _ Store = (*FileStore)(nil)
