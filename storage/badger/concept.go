package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/storage"
)

// ConceptStore implements storage.ConceptStore and storage.VectorIndex
// backed by BadgerDB. The vector index is a store-side scan over the
// precomputed concept vectors written by the indexing pipeline, gated on an
// index-built marker.
type ConceptStore struct {
	backend *Backend
}

var (
	_ storage.ConceptStore = (*ConceptStore)(nil)
	_ storage.VectorIndex  = (*ConceptStore)(nil)
)

// NewConceptStore opens a concept store at the given path.
//
// Returns the storage.ConceptStore interface to enforce abstraction.
func NewConceptStore(filePath string) (storage.ConceptStore, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return &ConceptStore{backend: backend}, nil
}

// NewConceptStoreWithBackend wraps an existing backend.
func NewConceptStoreWithBackend(backend *Backend) *ConceptStore {
	return &ConceptStore{backend: backend}
}

// Close closes the underlying backend.
func (s *ConceptStore) Close() error {
	return s.backend.Close()
}

// readConcept reads and unmarshals a concept by key.
// Returns (nil, nil) when the key doesn't exist.
func readConcept(tx *badger.Txn, key []byte) (*core.Concept, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var concept *core.Concept
	err = item.Value(func(val []byte) error {
		var err error
		concept, err = storage.UnmarshalConcept(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return concept, nil
}

// matchesSourceTypes reports whether the concept passes the source-type filter.
// A nil or empty filter matches everything.
func matchesSourceTypes(concept *core.Concept, sourceTypes []core.SourceType) bool {
	if len(sourceTypes) == 0 {
		return true
	}
	return slices.Contains(sourceTypes, concept.SourceType)
}

// FetchConcepts retrieves concepts, optionally filtered by source type.
func (s *ConceptStore) FetchConcepts(ctx context.Context, sourceTypes []core.SourceType, limit int) ([]*core.Concept, error) {
	var result []*core.Concept

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(conceptRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var concept *core.Concept
			err := item.Value(func(val []byte) error {
				var err error
				concept, err = storage.UnmarshalConcept(val)
				return err
			})
			if err != nil {
				return err
			}
			if concept == nil || !matchesSourceTypes(concept, sourceTypes) {
				continue
			}

			result = append(result, concept)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetConcept retrieves a single concept by ID.
func (s *ConceptStore) GetConcept(ctx context.Context, id core.ID) (*core.Concept, error) {
	var result *core.Concept
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readConcept(tx, makeConceptKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetConceptByName retrieves a single concept by its unique name.
func (s *ConceptStore) GetConceptByName(ctx context.Context, name string) (*core.Concept, error) {
	var result *core.Concept
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeConceptNameKey(name))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var conceptID core.ID
		err = item.Value(func(val []byte) error {
			conceptID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readConcept(tx, makeConceptKey(conceptID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// AddConcepts adds one or more concepts to storage.
// Concept names are unique; adding a concept with an existing name replaces it.
func (s *ConceptStore) AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			if err := core.ValidateConcept(concept); err != nil {
				return err
			}

			// Use content-based ID if not set
			if concept.Id == 0 {
				concept.Id = core.IDFromName(concept.Name)
			}

			concept.InsertedAt = time.Now().UTC()
			concept.UpdatedAt = concept.InsertedAt

			value := storage.MarshalConcept(concept)
			if err := tx.Set(makeConceptKey(concept.Id), value); err != nil {
				return err
			}

			// Store name index
			if err := tx.Set(makeConceptNameKey(concept.Name), storage.MarshalID(concept.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return concepts, nil
}

// UpdateConcepts updates existing concepts.
func (s *ConceptStore) UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			key := makeConceptKey(concept.Id)

			old, err := readConcept(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			concept.UpdatedAt = time.Now().UTC()

			value := storage.MarshalConcept(concept)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update name index if the name changed
			if old.Name != concept.Name {
				if err := tx.Delete(makeConceptNameKey(old.Name)); err != nil {
					return err
				}
				if err := tx.Set(makeConceptNameKey(concept.Name), storage.MarshalID(concept.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return concepts, nil
}

// QueryByVector issues a similarity query against the stored concept vectors.
// Results are ordered by raw similarity descending and bounded by k.
func (s *ConceptStore) QueryByVector(ctx context.Context, vector []float32, k int, threshold float32, sourceTypes []core.SourceType) ([]*core.SearchResult, error) {
	if len(vector) == 0 || k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SearchResult

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(conceptRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var concept *core.Concept
			err := item.Value(func(val []byte) error {
				var err error
				concept, err = storage.UnmarshalConcept(val)
				return err
			})
			if err != nil {
				return err
			}
			if concept == nil || !matchesSourceTypes(concept, sourceTypes) {
				continue
			}

			// Skip concepts that haven't been embedded yet
			if len(concept.Vector) == 0 {
				continue
			}

			similarity := core.CosineSimilarity(vector, concept.Vector)
			if similarity >= threshold {
				results = append(results, core.NewSearchResult(concept, similarity))
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Order by raw similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// IndexMeta returns the vector index metadata, or storage.ErrIndexNotBuilt
// when no index build has completed.
func (s *ConceptStore) IndexMeta(ctx context.Context) (*storage.VectorIndexMeta, error) {
	var meta *storage.VectorIndexMeta
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexMetaKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrIndexNotBuilt
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			meta, err = storage.UnmarshalIndexMeta(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// SetIndexMeta records a completed index build.
func (s *ConceptStore) SetIndexMeta(ctx context.Context, meta *storage.VectorIndexMeta) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexMetaKey(), storage.MarshalIndexMeta(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
