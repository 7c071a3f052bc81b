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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	modelKeyPrefix  = "model:"
	latestKeyPrefix = "latest:"
)

// BadgerStore persists models in an embedded BadgerDB.
//
// Keys:
//
//	model:{name}:{version:010d}  -> gob record (metadata + compressed snapshot)
//	latest:{name}                -> JSON Metadata of the newest version
//
// Versions are zero-padded so prefix iteration yields ascending order.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// OpenBadgerStore opens a BadgerDB at path. An empty path opens an
// in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger model store: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStore wraps an existing database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func modelKey(name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", modelKeyPrefix, name, version))
}

func modelPrefix(name string) []byte {
	return []byte(modelKeyPrefix + name + ":")
}

func latestKey(name string) []byte {
	return []byte(latestKeyPrefix + name)
}

// Save implements Store.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *BadgerStore) Save(ctx context.Context, snap *Snapshot, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meta.Name == "" || strings.Contains(meta.Name, ":") {
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

	record, err := marshalRecord(&storedFile{Metadata: meta, CompressedData: compressed})
	if err != nil {
		return err
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(modelKey(meta.Name, meta.Version), record); err != nil {
			return fmt.Errorf("store model: %w", err)
		}

		current, err := readLatest(txn, meta.Name)
		if err != nil && !errors.Is(err, ErrModelNotFound) {
			return err
		}
		if current == nil || meta.Version > current.Version {
			if err := txn.Set(latestKey(meta.Name), metaJSON); err != nil {
				return fmt.Errorf("store latest pointer: %w", err)
			}
		}
		return nil
	})
}

func readLatest(txn *badger.Txn, name string) (*Metadata, error) {
	item, err := txn.Get(latestKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	var meta Metadata
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	if err != nil {
		return nil, fmt.Errorf("decode latest pointer: %w", err)
	}
	return &meta, nil
}

// Load implements Store.
func (s *BadgerStore) Load(ctx context.Context, name string, version int) (*Snapshot, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var sf *storedFile
	err := s.db.View(func(txn *badger.Txn) error {
		if version == 0 {
			latest, err := readLatest(txn, name)
			if err != nil {
				return err
			}
			version = latest.Version
		}

		item, err := txn.Get(modelKey(name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var derr error
			sf, derr = unmarshalRecord(bytes.NewReader(val))
			return derr
		})
	})
	if err != nil {
		return nil, nil, err
	}

	snap, err := decodeSnapshot(sf.CompressedData, sf.Metadata.Checksum)
	if err != nil {
		return nil, nil, err
	}
	return snap, &sf.Metadata, nil
}

// LatestVersion implements Store.
func (s *BadgerStore) LatestVersion(name string) (int, bool) {
	var version int
	err := s.db.View(func(txn *badger.Txn) error {
		meta, err := readLatest(txn, name)
		if err != nil {
			return err
		}
		version = meta.Version
		return nil
	})
	return version, err == nil
}

// List implements Store.
func (s *BadgerStore) List(_ context.Context) ([]Metadata, error) {
	var out []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(latestKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var meta Metadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				continue
			}
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

// Versions implements Store.
func (s *BadgerStore) Versions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var versions []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := modelPrefix(name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			v, err := strconv.Atoi(string(it.Item().Key()[len(prefix):]))
			if err != nil {
				continue
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan model versions: %w", err)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// Prune implements Store.
func (s *BadgerStore) Prune(ctx context.Context, name string, keep int) error {
	if keep < 1 {
		keep = 1
	}

	versions, err := s.Versions(ctx, name)
	if err != nil {
		return err
	}
	if len(versions) <= keep {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, v := range versions[keep:] {
			if err := txn.Delete(modelKey(name, v)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete model v%d: %w", v, err)
			}
		}
		return nil
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
