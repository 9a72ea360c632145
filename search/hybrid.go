package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/poiesic/coursegraph/core"
)

const (
	// encodeSubBatch is the number of texts per embedder call.
	encodeSubBatch = 5

	// minEncodeBatch is the smallest unit of work handed to a pool worker.
	minEncodeBatch = 5
)

// hybridSearch scores candidates in the application. Concepts with
// precomputed vectors are scored directly; the rest are encoded on the fly,
// in parallel when possible. A failing store yields an empty result set.
func (e *Engine) hybridSearch(ctx context.Context, queryVector []float32, params Params, monitor SearchMonitor) []*core.SearchResult {
	candidates, err := e.store.FetchConcepts(ctx, params.SourceTypes, maxCandidates)
	if err != nil {
		e.logger.Error("error fetching search candidates", "err", err)
		return []*core.SearchResult{}
	}
	monitor.AfterCandidateFetch(len(candidates))

	if len(candidates) == 0 {
		return []*core.SearchResult{}
	}

	var pending []*core.Concept
	for _, concept := range candidates {
		if len(concept.Vector) == 0 {
			pending = append(pending, concept)
		}
	}
	if len(pending) > 0 {
		if err := e.encodeParallel(ctx, pending); err != nil {
			e.logger.Warn("parallel encoding failed, falling back to sequential", "err", err)
			e.encodeSequential(ctx, pending)
		}
	}
	monitor.AfterEncoding(len(pending))

	results := make([]*core.SearchResult, 0, len(candidates))
	for _, concept := range candidates {
		// Concepts that still have no vector could not be encoded; skip
		// rather than fail the whole query.
		if len(concept.Vector) == 0 {
			continue
		}
		similarity := core.CosineSimilarity(queryVector, concept.Vector)
		if similarity >= params.Threshold {
			results = append(results, core.NewSearchResult(concept, similarity))
		}
	}

	sortResults(results)
	if len(results) > params.Limit {
		results = results[:params.Limit]
	}
	return results
}

// embeddingText builds the text representation of a concept for encoding.
func embeddingText(concept *core.Concept) string {
	return strings.TrimSpace(concept.Name + " " + concept.Definition + " " + concept.Example)
}

// encodeParallel encodes the pending concepts across the worker pool.
// Batch sizes scale with the amount of work so small requests don't pay
// fan-out overhead.
func (e *Engine) encodeParallel(ctx context.Context, pending []*core.Concept) error {
	batchSize := len(pending) / e.pool.Cap()
	if batchSize < minEncodeBatch {
		batchSize = minEncodeBatch
	}

	batchCount := (len(pending) + batchSize - 1) / batchSize
	errs := make(chan error, batchCount)

	var wg sync.WaitGroup
	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		batch := pending[start:end]

		wg.Add(1)
		if err := e.pool.Submit(func() {
			defer wg.Done()
			if err := e.encodeBatch(ctx, batch); err != nil {
				errs <- err
			}
		}); err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// encodeBatch encodes one worker's share of concepts, a few texts per
// embedder call.
func (e *Engine) encodeBatch(ctx context.Context, batch []*core.Concept) error {
	for start := 0; start < len(batch); start += encodeSubBatch {
		end := min(start+encodeSubBatch, len(batch))
		sub := batch[start:end]

		texts := make([]string, len(sub))
		for i, concept := range sub {
			texts[i] = embeddingText(concept)
		}

		vectors, err := e.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(sub) {
			return fmt.Errorf("%w: expected %d, got %d", ErrEncodingMismatch, len(sub), len(vectors))
		}

		for i := range sub {
			sub[i].Vector = core.NormalizeVector(vectors[i])
		}
	}
	return nil
}

// encodeSequential encodes concepts one at a time, skipping failures.
// Used when the parallel path fails so a partial result still beats none.
func (e *Engine) encodeSequential(ctx context.Context, pending []*core.Concept) {
	for _, concept := range pending {
		vector, err := e.embedder.EmbedText(ctx, embeddingText(concept))
		if err != nil {
			e.logger.Warn("failed to encode concept", "concept", concept.Name, "err", err)
			continue
		}
		concept.Vector = core.NormalizeVector(vector)
	}
}
