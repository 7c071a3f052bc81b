// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
)

// RecommendComponents holds the recommendation stack and what must be
// closed on shutdown.
type RecommendComponents struct {
	Engine     *recommend.Engine
	Loader     *dataset.DuckDBLoader
	Catalog    *catalog.CachedStore
	ModelStore storage.Store
}

// Close releases components in reverse construction order.
func (rc *RecommendComponents) Close(logger zerolog.Logger) { //nolint:gocritic // zerolog by value
	rc.Engine.Close()
	if rc.ModelStore != nil {
		if err := rc.ModelStore.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing model store")
		}
	}
	rc.Catalog.Close()
	if err := rc.Loader.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing dataset connection")
	}
}

// initRecommend opens the dataset, loads the catalog, builds the engine and
// restores the newest persisted model when one exists.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	loader, err := dataset.Open(cfg.DatasetConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	store, err := initCatalog(ctx, cfg, loader, logger)
	if err != nil {
		_ = loader.Close()
		return nil, err
	}

	engine, err := recommend.NewEngine(cfg.EngineConfig(), logger)
	if err != nil {
		store.Close()
		_ = loader.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetCatalog(store)
	engine.SetDataProvider(loader)

	rc := &RecommendComponents{Engine: engine, Loader: loader, Catalog: store}

	modelStore, err := openModelStore(cfg)
	if err != nil {
		rc.Close(logger)
		return nil, err
	}
	if modelStore != nil {
		rc.ModelStore = modelStore
		engine.SetModelStore(modelStore, cfg.ModelStore.KeepVersions)

		switch err := engine.LoadLatest(ctx); {
		case err == nil:
		case errors.Is(err, storage.ErrModelNotFound):
			logger.Info().Str("backend", cfg.ModelStore.Backend).Msg("no persisted model, waiting for training")
		default:
			// A corrupt snapshot should not keep the service down.
			logger.Warn().Err(err).Msg("failed to restore persisted model")
		}
	}

	logger.Info().
		Str("solver", cfg.Recommend.Solver).
		Int("factors", cfg.Recommend.Factors).
		Float64("alpha", cfg.Recommend.Alpha).
		Int("min_interactions", cfg.Recommend.MinInteractions).
		Bool("model_loaded", engine.Model() != nil).
		Msg("recommendation engine initialized")

	return rc, nil
}

// initCatalog loads titles and streaming availability into memory. Lookups
// go through a circuit breaker and a TTL cache.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initCatalog(ctx context.Context, cfg *config.Config, loader *dataset.DuckDBLoader, logger zerolog.Logger) (*catalog.CachedStore, error) {
	items, err := loader.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	mem := catalog.NewMemoryStore(items...)
	guarded := catalog.NewBreakerStore(mem, cfg.BreakerConfig(), logger)

	logger.Info().
		Int("items", mem.Len()).
		Str("catalog", cfg.Data.CatalogPath).
		Str("streaming", cfg.Data.StreamingPath).
		Msg("catalog loaded")

	return catalog.NewCachedStore(guarded, cfg.Metadata.CacheTTL), nil
}

// openModelStore returns nil when persistence is disabled.
func openModelStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.ModelStore.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendBadger:
		s, err := storage.OpenBadgerStore(cfg.ModelStore.Path)
		if err != nil {
			return nil, fmt.Errorf("open badger model store: %w", err)
		}
		return s, nil
	default:
		s, err := storage.NewFileStore(cfg.ModelStore.Path)
		if err != nil {
			return nil, fmt.Errorf("open file model store: %w", err)
		}
		return s, nil
	}
}
