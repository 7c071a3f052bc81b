// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
)

// DefaultModelName is the model store name used by the engine.
const DefaultModelName = "default"

// Engine trains latent factor models and serves recommendations from the
// current one. It is safe for concurrent use: readers load one immutable
// Model per call, and training builds a complete replacement before an
// atomic swap.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalogMu sync.RWMutex
	catalog   catalog.Store

	dataProvider DataProvider
	modelStore   storage.Store
	keepVersions int

	model   atomic.Pointer[Model]
	version atomic.Int64

	// trainMu serializes training; TryLock rejects overlapping runs.
	trainMu sync.Mutex

	statusMu sync.RWMutex
	status   TrainingStatus

	responses *cache.Cache[*Response]

	hooksMu sync.RWMutex
	onSwap  []func(*Model)
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

	e := &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	if cfg.Cache.Enabled {
		e.responses = cache.New[*Response](cfg.Cache.TTL)
	}
	e.status.Solver = cfg.Solver
	return e, nil
}

// Close releases background resources.
func (e *Engine) Close() {
	if e.responses != nil {
		e.responses.Close()
	}
}

// SetDataProvider sets the interaction source used by Train.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	e.dataProvider = dp
}

// SetCatalog sets the metadata store used to enrich results and to rank the
// popularity fallback. Without one, results carry placeholders and the
// fallback is empty.
func (e *Engine) SetCatalog(store catalog.Store) {
	e.catalogMu.Lock()
	e.catalog = store
	e.catalogMu.Unlock()
	e.invalidateResponses()
}

func (e *Engine) catalogStore() catalog.Store {
	e.catalogMu.RLock()
	defer e.catalogMu.RUnlock()
	return e.catalog
}

// SetModelStore enables persistence. Every trained model is saved and the
// store is pruned to keep versions.
func (e *Engine) SetModelStore(store storage.Store, keep int) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	e.modelStore = store
	e.keepVersions = keep
}

// OnModelSwap registers fn to run after each model swap.
func (e *Engine) OnModelSwap(fn func(*Model)) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.onSwap = append(e.onSwap, fn)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Model returns the serving model, or nil before the first training run.
func (e *Engine) Model() *Model {
	return e.model.Load()
}

// Status returns the training status.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// Train loads interactions from the data provider and trains a new model.
// It returns ErrTrainingInProgress without blocking if another run is
// active, and an error wrapping ErrInsufficientData when the filtered data
// cannot support a rank-1 model. The serving model is left untouched on
// any failure.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		metrics.RecordTraining("rejected", 0)
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return ErrNoDataProvider
	}

	start := e.beginTraining()
	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	rows, err := e.dataProvider.LoadInteractions(trainCtx)
	if err != nil {
		err = fmt.Errorf("load interactions: %w", err)
		e.endTraining(start, err)
		return err
	}

	m, err := e.fit(trainCtx, rows)
	e.endTraining(start, err)
	if err != nil {
		return err
	}
	e.install(ctx, m, true)
	return nil
}

// TrainOn trains a new model on rows, bypassing the data provider. It is
// used by offline evaluation and tests.
func (e *Engine) TrainOn(ctx context.Context, rows []Interaction) error {
	if !e.trainMu.TryLock() {
		metrics.RecordTraining("rejected", 0)
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	start := e.beginTraining()
	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	m, err := e.fit(trainCtx, rows)
	e.endTraining(start, err)
	if err != nil {
		return err
	}
	e.install(ctx, m, true)
	return nil
}

// fit runs the full pipeline: filter, index, weight, factorize.
func (e *Engine) fit(ctx context.Context, rows []Interaction) (*Model, error) {
	start := time.Now()

	filtered := FilterSparse(rows, e.config.MinInteractions)
	if len(filtered) < e.config.Training.MinInteractions {
		return nil, fmt.Errorf("%w: %d interactions after filtering, need %d",
			ErrInsufficientData, len(filtered), e.config.Training.MinInteractions)
	}

	ids := NewIdentityMap(filtered)
	matrix := BuildMatrix(filtered, ids, e.config.Alpha)

	e.logger.Info().
		Int("rows", len(rows)).
		Int("filtered", len(filtered)).
		Int("users", ids.NumUsers()).
		Int("items", ids.NumItems()).
		Int("nnz", matrix.NNZ()).
		Str("solver", e.config.Solver).
		Msg("training model")

	factors, err := newFactorizer(e.config).Fit(ctx, matrix)
	if errors.Is(err, algorithms.ErrInsufficientRank) {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}
	if err != nil {
		return nil, fmt.Errorf("factorize: %w", err)
	}

	m, err := NewModel(factors, ids, matrix)
	if err != nil {
		return nil, err
	}
	m.TrainedAt = time.Now()
	m.TrainingDuration = time.Since(start)
	return m, nil
}

// newFactorizer builds the configured solver.
func newFactorizer(cfg *Config) algorithms.Factorizer {
	if cfg.Solver == SolverALS {
		return algorithms.NewALS(algorithms.ALSConfig{
			NumFactors:     cfg.Factors,
			NumIterations:  cfg.ALS.Iterations,
			Regularization: cfg.ALS.Regularization,
			NumWorkers:     cfg.ALS.NumWorkers,
			Seed:           cfg.RandomState,
		})
	}
	return algorithms.NewSVD(algorithms.SVDConfig{
		NumFactors:      cfg.Factors,
		PowerIterations: cfg.SVD.PowerIterations,
		Oversamples:     cfg.SVD.Oversamples,
		Seed:            cfg.RandomState,
	})
}

// SetModel installs m as the serving model without persisting it. The
// model keeps its version if that is newer than every installed one.
func (e *Engine) SetModel(m *Model) {
	e.install(context.Background(), m, false)
}

// LoadLatest restores the newest readable persisted model, skipping versions
// that fail to load. It returns storage.ErrModelNotFound when the store is
// empty.
func (e *Engine) LoadLatest(ctx context.Context) error {
	if e.modelStore == nil {
		return fmt.Errorf("%w: no model store configured", storage.ErrModelNotFound)
	}
	versions, err := e.modelStore.Versions(ctx, DefaultModelName)
	if err != nil {
		return fmt.Errorf("list model versions: %w", err)
	}
	if len(versions) == 0 {
		return fmt.Errorf("%w: %s", storage.ErrModelNotFound, DefaultModelName)
	}

	var m *Model
	for _, v := range versions {
		m, err = e.restore(ctx, v)
		if err == nil {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		e.logger.Warn().Err(err).Int("version", v).Msg("skipping unreadable model version")
	}
	if err != nil {
		return fmt.Errorf("no readable model among %d versions: %w", len(versions), err)
	}

	e.install(ctx, m, false)

	e.logger.Info().
		Int("version", m.Version).
		Int("users", m.IDs.NumUsers()).
		Int("items", m.IDs.NumItems()).
		Msg("restored model from store")
	return nil
}

func (e *Engine) restore(ctx context.Context, version int) (*Model, error) {
	snap, meta, err := e.modelStore.Load(ctx, DefaultModelName, version)
	if err != nil {
		return nil, err
	}
	m, err := ModelFromSnapshot(snap, meta)
	if err != nil {
		return nil, fmt.Errorf("restore model: %w", err)
	}
	return m, nil
}

// raiseVersion lifts the version counter to at least v.
func (e *Engine) raiseVersion(v int) {
	for {
		cur := e.version.Load()
		if int64(v) <= cur || e.version.CompareAndSwap(cur, int64(v)) {
			return
		}
	}
}

// nextVersion returns max(want, current+1) and records it.
func (e *Engine) nextVersion(want int) int {
	for {
		cur := e.version.Load()
		next := cur + 1
		if int64(want) > cur {
			next = int64(want)
		}
		if e.version.CompareAndSwap(cur, next) {
			return int(next)
		}
	}
}

// install assigns a version, swaps m in, and runs the post-swap work. A model
// headed for the store is numbered past every stored version, readable or
// not, so pruning never removes it.
func (e *Engine) install(ctx context.Context, m *Model, persist bool) {
	if persist && e.modelStore != nil {
		if latest, ok := e.modelStore.LatestVersion(DefaultModelName); ok {
			e.raiseVersion(latest)
		}
	}
	m.Version = e.nextVersion(m.Version)
	e.model.Store(m)
	e.invalidateResponses()

	users, items, rank := m.Factors.Dims()
	metrics.RecordModel(m.Version, users, items, rank, m.Seen.NNZ())

	e.statusMu.Lock()
	e.status.ModelVersion = m.Version
	e.status.LastTrainedAt = m.TrainedAt
	e.status.Users = users
	e.status.Items = items
	e.status.Interactions = m.Interactions
	e.status.Rank = rank
	e.status.Solver = m.Solver()
	e.statusMu.Unlock()

	if persist && e.modelStore != nil {
		e.persist(ctx, m)
	}

	e.hooksMu.RLock()
	hooks := append([]func(*Model){}, e.onSwap...)
	e.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(m)
	}
}

// persist saves m. Failures are logged; the model keeps serving.
func (e *Engine) persist(ctx context.Context, m *Model) {
	saveCtx := context.WithoutCancel(ctx)
	if err := e.modelStore.Save(saveCtx, m.Snapshot(), m.Metadata(DefaultModelName)); err != nil {
		e.logger.Error().Err(err).Int("version", m.Version).Msg("failed to persist model")
		return
	}
	if e.keepVersions > 0 {
		if err := e.modelStore.Prune(saveCtx, DefaultModelName, e.keepVersions); err != nil {
			e.logger.Warn().Err(err).Msg("failed to prune model store")
		}
	}
	e.logger.Debug().Int("version", m.Version).Msg("model persisted")
}

func (e *Engine) beginTraining() time.Time {
	start := time.Now()
	e.statusMu.Lock()
	e.status.InProgress = true
	e.status.StartedAt = start
	e.status.LastError = ""
	e.statusMu.Unlock()
	return start
}

func (e *Engine) endTraining(start time.Time, err error) {
	d := time.Since(start)

	e.statusMu.Lock()
	e.status.InProgress = false
	if err != nil {
		e.status.LastError = err.Error()
	} else {
		e.status.LastDuration = d
	}
	e.statusMu.Unlock()

	switch {
	case err == nil:
		metrics.RecordTraining("success", d)
		e.logger.Info().Dur("duration", d).Msg("model training complete")
	case errors.Is(err, ErrInsufficientData):
		metrics.RecordTraining("insufficient_data", d)
		e.logger.Warn().Err(err).Msg("insufficient data for training")
	default:
		metrics.RecordTraining("error", d)
		e.logger.Error().Err(err).Msg("model training failed")
	}
}

func (e *Engine) invalidateResponses() {
	if e.responses != nil {
		e.responses.Clear()
	}
}
