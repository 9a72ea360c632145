package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/storage"
)

func newTestStore(t *testing.T) *ConceptStore {
	t.Helper()
	store, err := NewMemoryConceptStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndGetConcept(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	added, err := store.AddConcepts(ctx, &core.Concept{
		Name:       "feedback loop",
		Definition: "a circular chain of cause and effect",
		Example:    "a thermostat regulating room temperature",
		SourceType: core.SourceTypeOfficial,
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotZero(t, added[0].Id)
	assert.Equal(t, core.IDFromName("feedback loop"), added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	got, err := store.GetConcept(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "feedback loop", got.Name)

	byName, err := store.GetConceptByName(ctx, "feedback loop")
	require.NoError(t, err)
	assert.Equal(t, got.Id, byName.Id)
}

func TestAddConcepts_Invalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddConcepts(ctx, &core.Concept{Definition: "no name"})
	assert.ErrorIs(t, err, core.ErrInvalidConcept)
}

func TestGetConcept_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetConcept(ctx, core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetConceptByName(ctx, "does not exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFetchConcepts_SourceFilterAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	concepts := []*core.Concept{
		{Name: "system", Definition: "interacting parts", SourceType: core.SourceTypeOfficial},
		{Name: "emergence", Definition: "behavior of the whole", SourceType: core.SourceTypeOfficial},
		{Name: "a student note", Definition: "contributed definition", SourceType: core.SourceTypeStudent},
	}
	_, err := store.AddConcepts(ctx, concepts...)
	require.NoError(t, err)

	t.Run("no filter fetches all", func(t *testing.T) {
		got, err := store.FetchConcepts(ctx, nil, 0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("source filter", func(t *testing.T) {
		got, err := store.FetchConcepts(ctx, []core.SourceType{core.SourceTypeOfficial}, 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, c := range got {
			assert.Equal(t, core.SourceTypeOfficial, c.SourceType)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := store.FetchConcepts(ctx, nil, 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty result", func(t *testing.T) {
		got, err := store.FetchConcepts(ctx, []core.SourceType{core.SourceTypeTeacher}, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestUpdateConcepts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	added, err := store.AddConcepts(ctx, &core.Concept{
		Name:       "stock",
		Definition: "an accumulation",
		SourceType: core.SourceTypeOfficial,
	})
	require.NoError(t, err)

	concept := added[0]
	concept.Vector = []float32{0.5, 0.5}
	updated, err := store.UpdateConcepts(ctx, concept)
	require.NoError(t, err)
	require.Len(t, updated, 1)

	got, err := store.GetConcept(ctx, concept.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, got.Vector)
}

func TestUpdateConcepts_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpdateConcepts(ctx, &core.Concept{
		Id:         core.ID(999),
		Name:       "ghost",
		SourceType: core.SourceTypeOfficial,
	})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestQueryByVector(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddConcepts(ctx,
		&core.Concept{
			Name:       "close match",
			Definition: "d",
			SourceType: core.SourceTypeOfficial,
			Vector:     []float32{1, 0, 0},
		},
		&core.Concept{
			Name:       "partial match",
			Definition: "d",
			SourceType: core.SourceTypeOfficial,
			Vector:     core.NormalizeVector([]float32{1, 1, 0}),
		},
		&core.Concept{
			Name:       "unrelated",
			Definition: "d",
			SourceType: core.SourceTypeOfficial,
			Vector:     []float32{0, 0, 1},
		},
		&core.Concept{
			Name:       "not embedded",
			Definition: "d",
			SourceType: core.SourceTypeOfficial,
		},
	)
	require.NoError(t, err)

	results, err := store.QueryByVector(ctx, []float32{1, 0, 0}, 10, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "close match", results[0].Concept.Name)
	assert.Equal(t, "partial match", results[1].Concept.Name)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-5)

	// Results are ordered by raw similarity descending
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestQueryByVector_KBound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := store.AddConcepts(ctx, &core.Concept{
			Name:       name,
			Definition: "d",
			SourceType: core.SourceTypeOfficial,
			Vector:     []float32{1, 0},
		})
		require.NoError(t, err)
	}

	results, err := store.QueryByVector(ctx, []float32{1, 0}, 2, 0.0, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQueryByVector_InvalidQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.QueryByVector(ctx, nil, 10, 0.5, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = store.QueryByVector(ctx, []float32{1}, 0, 0.5, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestIndexMeta(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.IndexMeta(ctx)
	assert.ErrorIs(t, err, storage.ErrIndexNotBuilt)

	meta := &storage.VectorIndexMeta{
		Model:      "all-minilm-l6-v2",
		Dimensions: 384,
		BuiltAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.SetIndexMeta(ctx, meta))

	got, err := store.IndexMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, meta, got)
}
