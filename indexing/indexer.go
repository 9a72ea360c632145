// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package indexing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/coursegraph/ai"
	"github.com/poiesic/coursegraph/storage"
)

// Config holds configuration for an index build.
type Config struct {
	// BatchSize is the number of concepts to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of concepts)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Model names the embedding model recorded in the index metadata
	Model string

	// SkipEmbedded skips concepts that already carry a vector, turning a
	// rebuild into an incremental top-up
	SkipEmbedded bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      50,
		ReportInterval: 50,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Indexer builds the vector index: it embeds every concept in the store and
// records index metadata so searches know the index is usable.
type Indexer struct {
	store     storage.ConceptStore
	index     storage.VectorIndex
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewIndexer creates an indexer.
// progress: where to write progress output (typically os.Stderr)
func NewIndexer(store storage.ConceptStore, index storage.VectorIndex, embedder ai.Embedder, config *Config, progress io.Writer) (*Indexer, error) {
	if store == nil {
		return nil, ErrConceptStoreRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Indexer{
		store:     store,
		index:     index,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(store, embedder, config.MaxRetries, config.RetryDelay),
	}, nil
}

// Run executes the index build. All concepts in the store are embedded with
// the configured embedder, and on success the index metadata is written.
func (ix *Indexer) Run(ctx context.Context) error {
	concepts, err := ix.store.FetchConcepts(ctx, nil, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch concepts: %w", err)
	}

	if ix.config.SkipEmbedded {
		unembedded := concepts[:0]
		for _, concept := range concepts {
			if len(concept.Vector) == 0 {
				unembedded = append(unembedded, concept)
			}
		}
		concepts = unembedded
	}

	total := len(concepts)
	if total == 0 {
		fmt.Fprintf(ix.progress, "No concepts to index (0 concepts)\n")
		return ix.writeMeta(ctx, 0)
	}

	fmt.Fprintf(ix.progress, "Starting index build for %d concepts (batch size: %d)\n",
		total, ix.config.BatchSize)

	tracker := NewProgressTracker(ix.progress, total, ix.config.ReportInterval)
	tracker.Start()

	dimensions := 0
	for start := 0; start < total; start += ix.config.BatchSize {
		end := min(start+ix.config.BatchSize, total)
		batch := concepts[start:end]

		if err := ix.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		if dimensions == 0 && len(batch) > 0 {
			dimensions = len(batch[0].Vector)
		}

		tracker.Increment(len(batch))
	}

	tracker.Finish()

	if err := ix.writeMeta(ctx, dimensions); err != nil {
		return err
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(ix.progress, "Index build complete. Processed %d concepts in %v (%.1f concepts/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

func (ix *Indexer) writeMeta(ctx context.Context, dimensions int) error {
	meta := &storage.VectorIndexMeta{
		Model:      ix.config.Model,
		Dimensions: dimensions,
		BuiltAt:    time.Now().UTC(),
	}
	if err := ix.index.SetIndexMeta(ctx, meta); err != nil {
		return fmt.Errorf("failed to record index metadata: %w", err)
	}
	return nil
}
