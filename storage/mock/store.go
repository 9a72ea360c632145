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


package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/storage"
)

// MockStore implements storage.ConceptStore and storage.VectorIndex with
// configurable behavior for testing. Override the function fields to inject
// custom responses or failures; unset fields fall back to an in-memory map.
type MockStore struct {
	mu sync.Mutex

	FetchConceptsFunc func(ctx context.Context, sourceTypes []core.SourceType, limit int) ([]*core.Concept, error)
	QueryByVectorFunc func(ctx context.Context, vector []float32, k int, threshold float32, sourceTypes []core.SourceType) ([]*core.SearchResult, error)
	IndexMetaFunc     func(ctx context.Context) (*storage.VectorIndexMeta, error)

	concepts  map[core.ID]*core.Concept
	indexMeta *storage.VectorIndexMeta

	fetchCalls int
	queryCalls int
}

var (
	_ storage.ConceptStore = (*MockStore)(nil)
	_ storage.VectorIndex  = (*MockStore)(nil)
)

// NewMockStore creates a mock store with default in-memory behavior.
func NewMockStore() *MockStore {
	return &MockStore{
		concepts: make(map[core.ID]*core.Concept),
	}
}

// FetchConcepts returns stored concepts filtered by source type,
// or calls FetchConceptsFunc if set.
func (m *MockStore) FetchConcepts(ctx context.Context, sourceTypes []core.SourceType, limit int) ([]*core.Concept, error) {
	m.mu.Lock()
	m.fetchCalls++
	fn := m.FetchConceptsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, sourceTypes, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*core.Concept
	for _, c := range m.concepts {
		if !matchesSourceTypes(c, sourceTypes) {
			continue
		}
		result = append(result, c)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// GetConcept returns a stored concept or storage.ErrNotFound.
func (m *MockStore) GetConcept(ctx context.Context, id core.ID) (*core.Concept, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.concepts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return c, nil
}

// GetConceptByName returns a stored concept by name or storage.ErrNotFound.
func (m *MockStore) GetConceptByName(ctx context.Context, name string) (*core.Concept, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.concepts {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, storage.ErrNotFound
}

// AddConcepts stores concepts, assigning content-based IDs when unset.
func (m *MockStore) AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range concepts {
		if err := core.ValidateConcept(c); err != nil {
			return nil, err
		}
		if c.Id == 0 {
			c.Id = core.IDFromName(c.Name)
		}
		m.concepts[c.Id] = c
	}
	return concepts, nil
}

// UpdateConcepts replaces stored concepts, failing on unknown IDs.
func (m *MockStore) UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range concepts {
		if _, ok := m.concepts[c.Id]; !ok {
			return nil, storage.ErrNotFound
		}
		m.concepts[c.Id] = c
	}
	return concepts, nil
}

// QueryByVector scans stored concepts by cosine similarity,
// or calls QueryByVectorFunc if set.
func (m *MockStore) QueryByVector(ctx context.Context, vector []float32, k int, threshold float32, sourceTypes []core.SourceType) ([]*core.SearchResult, error) {
	m.mu.Lock()
	m.queryCalls++
	fn := m.QueryByVectorFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, vector, k, threshold, sourceTypes)
	}
	if len(vector) == 0 || k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var results []*core.SearchResult
	for _, c := range m.concepts {
		if !matchesSourceTypes(c, sourceTypes) || len(c.Vector) == 0 {
			continue
		}
		similarity := core.CosineSimilarity(vector, c.Vector)
		if similarity >= threshold {
			results = append(results, core.NewSearchResult(c, similarity))
		}
	}
	sortBySimilarity(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// IndexMeta returns the recorded index metadata, or calls IndexMetaFunc if
// set. Without either it reports storage.ErrIndexNotBuilt.
func (m *MockStore) IndexMeta(ctx context.Context) (*storage.VectorIndexMeta, error) {
	m.mu.Lock()
	fn := m.IndexMetaFunc
	meta := m.indexMeta
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if meta == nil {
		return nil, storage.ErrIndexNotBuilt
	}
	return meta, nil
}

// SetIndexMeta records index metadata.
func (m *MockStore) SetIndexMeta(ctx context.Context, meta *storage.VectorIndexMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexMeta = meta
	return nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// FetchCallCount returns the number of FetchConcepts calls.
func (m *MockStore) FetchCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// QueryCallCount returns the number of QueryByVector calls.
func (m *MockStore) QueryCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

func matchesSourceTypes(concept *core.Concept, sourceTypes []core.SourceType) bool {
	if len(sourceTypes) == 0 {
		return true
	}
	for _, st := range sourceTypes {
		if concept.SourceType == st {
			return true
		}
	}
	return false
}

func sortBySimilarity(results []*core.SearchResult) {
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})
}
