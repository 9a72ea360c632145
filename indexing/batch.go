package indexing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/coursegraph/ai"
	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/storage"
)

// BatchProcessor embeds batches of concepts and writes the vectors back.
type BatchProcessor struct {
	store          storage.ConceptStore
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store storage.ConceptStore, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// embeddingText builds the text a concept is embedded under. The same
// representation is used at query time, so the two must not drift.
func embeddingText(concept *core.Concept) string {
	return strings.TrimSpace(concept.Name + " " + concept.Definition + " " + concept.Example)
}

// Process generates embeddings for a batch of concepts and updates them in
// the store. Vectors are normalized after embedding to ensure compatibility
// with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, concepts []*core.Concept) error {
	if len(concepts) == 0 {
		return nil
	}

	texts := make([]string, len(concepts))
	for i, concept := range concepts {
		texts[i] = embeddingText(concept)
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(concepts) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(concepts), len(embeddings))
	}

	for i := range concepts {
		concepts[i].Vector = core.NormalizeVector(embeddings[i])
	}

	if _, err := bp.store.UpdateConcepts(ctx, concepts...); err != nil {
		return fmt.Errorf("failed to update concepts: %w", err)
	}

	return nil
}
