package search

import (
	"context"
	"errors"

	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/storage"
)

// indexedSearch queries the store's vector index. The second return value
// reports whether the indexed path produced a usable result set; false means
// the caller should fall back to hybrid scoring.
func (e *Engine) indexedSearch(ctx context.Context, queryVector []float32, params Params, monitor SearchMonitor) ([]*core.SearchResult, bool) {
	// An index that was never built is a normal condition, not a failure.
	if _, err := e.index.IndexMeta(ctx); err != nil {
		if !errors.Is(err, storage.ErrIndexNotBuilt) {
			e.logger.Warn("vector index metadata unavailable", "err", err)
		}
		return nil, false
	}

	// Overfetch so that post-ranking by weighted score has enough
	// candidates to reorder, bounded to keep query cost flat.
	k := params.Limit * 3
	if k > maxCandidates {
		k = maxCandidates
	}

	results, err := e.index.QueryByVector(ctx, queryVector, k, params.Threshold, params.SourceTypes)
	if err != nil {
		e.logger.Warn("indexed query failed, falling back to hybrid search", "err", err)
		monitor.AfterIndexedQuery(nil, err)
		return nil, false
	}

	monitor.ModeSelected(ModeIndexed)
	monitor.AfterIndexedQuery(results, nil)

	sortResults(results)
	if len(results) > params.Limit {
		results = results[:params.Limit]
	}
	if results == nil {
		results = []*core.SearchResult{}
	}
	return results, true
}
