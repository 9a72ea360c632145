package search

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/coursegraph/ai"
	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/storage"
)

// maxCandidates bounds both the indexed overfetch and the hybrid candidate
// set, keeping query cost flat regardless of the requested limit.
const maxCandidates = 100

// Engine answers concept search queries. It prefers the store's vector
// index, falls back to application-side hybrid scoring when the index is
// missing or failing, and degrades to keyword matching when no embedder is
// available. Search always returns a ranked, possibly empty, result list.
type Engine struct {
	store    storage.ConceptStore
	index    storage.VectorIndex
	embedder ai.Embedder
	pool     *ants.Pool
	cache    *ResultCache
	logger   *slog.Logger
	monitor  SearchMonitor

	cacheTTL     time.Duration
	cacheMaxSize int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMonitor sets the default monitor used by Search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithPoolSize sets the worker pool size for parallel encoding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithCacheTTL sets how long cached result sets stay valid.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) error {
		e.cacheTTL = ttl
		return nil
	}
}

// WithCacheMaxSize sets the result cache entry bound.
func WithCacheMaxSize(size int) Option {
	return func(e *Engine) error {
		e.cacheMaxSize = size
		return nil
	}
}

// NewEngine creates a search engine.
//
// The store is required. The index may be nil, which disables the indexed
// path. The provider may be nil, in which case every query uses the
// degraded keyword search.
func NewEngine(
	store storage.ConceptStore,
	index storage.VectorIndex,
	provider ai.EmbedderProvider,
	opts ...Option,
) (*Engine, error) {
	if store == nil {
		return nil, ErrConceptStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:   store,
		index:   index,
		pool:    pool,
		logger:  slog.Default(),
		monitor: &noopMonitor{},
	}
	if provider != nil {
		e.embedder = provider.Embedder()
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			pool.Release()
			return nil, err
		}
	}

	e.cache = NewResultCache(e.cacheTTL, e.cacheMaxSize)

	return e, nil
}

// Cache returns the engine's result cache for inspection and clearing.
func (e *Engine) Cache() *ResultCache {
	return e.cache
}

// Release releases the encoding worker pool.
// The engine should not be used after calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Search finds concepts relevant to the query, ranked by credibility-weighted
// similarity. It never fails the caller: degraded conditions produce an empty
// or keyword-matched result list instead of an error.
func (e *Engine) Search(ctx context.Context, query string, params Params) ([]*core.SearchResult, error) {
	return e.SearchWithMonitor(ctx, query, params, nil)
}

// SearchWithMonitor is Search with per-call monitoring.
// The monitor receives callbacks at each stage of the search process.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, params Params, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = e.monitor
	}

	params = params.normalized()
	monitor.Start(query)

	if strings.TrimSpace(query) == "" {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	var key uint64
	if params.UseCache {
		key = cacheKey(query, params)
		if cached, ok := e.cache.Get(key); ok {
			monitor.CacheHit(query)
			monitor.Finish(cached)
			return cached, nil
		}
	}

	results := e.dispatch(ctx, query, params, monitor)
	if results == nil {
		results = []*core.SearchResult{}
	}

	if params.UseCache {
		e.cache.Put(key, results)
	}

	monitor.Finish(results)
	return results, nil
}

// dispatch picks the best available search mode for this query.
func (e *Engine) dispatch(ctx context.Context, query string, params Params, monitor SearchMonitor) []*core.SearchResult {
	if e.embedder == nil {
		monitor.ModeSelected(ModeDegraded)
		return e.textSearch(ctx, query, params)
	}

	queryVector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Warn("query encoding failed, using keyword search", "err", err)
		monitor.ModeSelected(ModeDegraded)
		return e.textSearch(ctx, query, params)
	}

	if e.index != nil {
		if results, ok := e.indexedSearch(ctx, queryVector, params, monitor); ok {
			return results
		}
	}

	monitor.ModeSelected(ModeHybrid)
	return e.hybridSearch(ctx, queryVector, params, monitor)
}
