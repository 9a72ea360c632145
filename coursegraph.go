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


package coursegraph

import (
	"io"
	"log/slog"

	"github.com/poiesic/coursegraph/ai"
	"github.com/poiesic/coursegraph/ai/openai"
	"github.com/poiesic/coursegraph/indexing"
	"github.com/poiesic/coursegraph/search"
	"github.com/poiesic/coursegraph/storage"
	"github.com/poiesic/coursegraph/storage/badger"
)

// Database bundles the concept store, vector index and embedder provider
// behind one handle. A database whose embedding service is unreachable still
// opens; searches then run in degraded keyword mode.
type Database struct {
	backend  *badger.Backend
	concepts *badger.ConceptStore
	provider ai.EmbedderProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default embedder configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// NewDatabase opens a concept database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	concepts := badger.NewConceptStoreWithBackend(backend)

	logger := slog.Default()

	// An unreachable embedding service must not make stored concepts
	// inaccessible. Searches degrade to keyword matching instead.
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		logger.Warn("embedder unavailable, searches will use keyword matching", "err", err)
		provider = nil
	}

	return &Database{
		backend:  backend,
		concepts: concepts,
		provider: provider,
		logger:   logger,
	}, nil
}

// Close releases the provider and storage.
func (db *Database) Close() error {
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing embedder provider", "err", err)
		}
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ConceptStore returns the concept store.
func (db *Database) ConceptStore() storage.ConceptStore {
	return db.concepts
}

// VectorIndex returns the vector index.
func (db *Database) VectorIndex() storage.VectorIndex {
	return db.concepts
}

// NewSearchEngine creates a search engine over this database.
func (db *Database) NewSearchEngine(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(db.concepts, db.concepts, db.provider, opts...)
}

// NewIndexer creates an index builder over this database.
// Returns ai.ErrEmbedderUnavailable when the embedder could not be reached
// at open time, since an index build cannot run without one.
func (db *Database) NewIndexer(config *indexing.Config, progress io.Writer) (*indexing.Indexer, error) {
	if db.provider == nil {
		return nil, ai.ErrEmbedderUnavailable
	}
	return indexing.NewIndexer(db.concepts, db.concepts, db.provider.Embedder(), config, progress)
}
