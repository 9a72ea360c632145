package storage

import (
	"context"
	"time"

	"github.com/poiesic/coursegraph/core"
)

// ConceptStore provides read and write access to the concept graph.
// Implementations must be thread-safe and support concurrent access.
// The search subsystem only uses the read operations.
type ConceptStore interface {
	// FetchConcepts retrieves concepts, optionally filtered by source type.
	// A nil or empty sourceTypes slice matches all source types.
	// limit bounds the number of returned concepts; limit <= 0 means no bound.
	FetchConcepts(ctx context.Context, sourceTypes []core.SourceType, limit int) ([]*core.Concept, error)

	// GetConcept retrieves a single concept by ID.
	// Returns ErrNotFound if the concept doesn't exist.
	GetConcept(ctx context.Context, id core.ID) (*core.Concept, error)

	// GetConceptByName retrieves a single concept by its unique name.
	// Returns ErrNotFound if the concept doesn't exist.
	GetConceptByName(ctx context.Context, name string) (*core.Concept, error)

	// AddConcepts adds one or more concepts to storage.
	// Uses content-based IDs (IDFromName) for concepts with ID=0.
	// Sets InsertedAt timestamp if not already set.
	// Returns the concepts with IDs and timestamps populated.
	AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// UpdateConcepts updates existing concepts.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any concept doesn't exist.
	UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorIndexMeta describes the state of a store-maintained vector index.
type VectorIndexMeta struct {
	Model      string    // Embedding model the index was built with
	Dimensions int       // Vector dimensionality
	BuiltAt    time.Time // When the index build completed
}

// VectorIndex is implemented by stores that maintain their own vector index
// over precomputed concept embeddings. Stores without this capability are
// searched through the application-side hybrid path instead.
type VectorIndex interface {
	// QueryByVector issues a similarity query against the store's vector index.
	// Returns up to k concepts with similarity >= threshold, ordered by raw
	// similarity descending, optionally filtered by source type.
	QueryByVector(ctx context.Context, vector []float32, k int, threshold float32, sourceTypes []core.SourceType) ([]*core.SearchResult, error)

	// IndexMeta returns the vector index metadata, or ErrIndexNotBuilt when
	// no index has been built yet.
	IndexMeta(ctx context.Context) (*VectorIndexMeta, error)

	// SetIndexMeta records that an index build completed. Called by the
	// indexing pipeline after all concept vectors are written.
	SetIndexMeta(ctx context.Context, meta *VectorIndexMeta) error
}
