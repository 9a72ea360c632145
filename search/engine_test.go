package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/coursegraph/ai/mock"
	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/storage"
	storagemock "github.com/poiesic/coursegraph/storage/mock"
)

func indexMeta() *storage.VectorIndexMeta {
	return &storage.VectorIndexMeta{
		Model:      "all-minilm-l12-v2",
		Dimensions: 384,
		BuiltAt:    time.Now().UTC(),
	}
}

// fixedQueryEmbedder returns a mock embedder whose query embedding is fixed,
// making similarity scores predictable.
func fixedQueryEmbedder(queryVector []float32) *aimock.MockEmbedder {
	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return queryVector, nil
	}
	return embedder
}

func seedConcepts(t *testing.T, store *storagemock.MockStore) {
	t.Helper()
	_, err := store.AddConcepts(context.Background(),
		&core.Concept{
			Name:              "feedback loop",
			Definition:        "a circular chain of cause and effect",
			SourceType:        core.SourceTypeOfficial,
			CredibilityWeight: 1.0,
			Vector:            []float32{1, 0},
		},
		&core.Concept{
			Name:              "student heuristic",
			Definition:        "a rule of thumb contributed by a student",
			SourceType:        core.SourceTypeStudent,
			CredibilityWeight: 0.5,
			Vector:            core.NormalizeVector([]float32{1, 1}),
		},
		&core.Concept{
			Name:              "unrelated topic",
			Definition:        "orthogonal to the query",
			SourceType:        core.SourceTypeOfficial,
			CredibilityWeight: 1.0,
			Vector:            []float32{0, 1},
		},
	)
	require.NoError(t, err)
}

func TestNewEngine(t *testing.T) {
	store := storagemock.NewMockStore()
	provider := aimock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		engine, err := NewEngine(store, store, provider)
		require.NoError(t, err)
		assert.NotNil(t, engine)
		engine.Release()
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewEngine(nil, nil, provider)
		assert.Equal(t, ErrConceptStoreRequired, err)
	})

	t.Run("nil provider is allowed", func(t *testing.T) {
		engine, err := NewEngine(store, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, engine)
		engine.Release()
	})

	t.Run("with pool size", func(t *testing.T) {
		engine, err := NewEngine(store, nil, provider, WithPoolSize(2))
		require.NoError(t, err)
		assert.NotNil(t, engine)
		engine.Release()
	})
}

func TestSearch_EmptyStore(t *testing.T) {
	store := storagemock.NewMockStore()
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "feedback", DefaultParams())
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	provider := aimock.NewMockProvider()

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "   ", DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_StoreUnreachable(t *testing.T) {
	store := storagemock.NewMockStore()
	store.FetchConceptsFunc = func(ctx context.Context, sourceTypes []core.SourceType, limit int) ([]*core.Concept, error) {
		return nil, errors.New("connection refused")
	}
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "feedback", DefaultParams())
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_HybridRanking(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "feedback", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Similarity 1.0 x credibility 1.0 ranks above 0.707 x 0.5.
	assert.Equal(t, "feedback loop", results[0].Concept.Name)
	assert.Equal(t, "student heuristic", results[1].Concept.Name)
	assert.InDelta(t, 1.0, float64(results[0].WeightedScore), 1e-5)
	assert.InDelta(t, 0.3536, float64(results[1].WeightedScore), 1e-3)

	// The orthogonal concept falls below the 0.5 threshold.
	for _, result := range results {
		assert.NotEqual(t, "unrelated topic", result.Concept.Name)
	}
}

func TestSearch_WeightedRankingScenario(t *testing.T) {
	// Three concepts at similarity 0.9, 0.6 and 0.3 to the query, with
	// credibility 1.0, 0.5 and 1.0. At threshold 0.5 the last one is
	// filtered on raw similarity, and the survivors rank by weighted score.
	store := storagemock.NewMockStore()
	_, err := store.AddConcepts(context.Background(),
		&core.Concept{
			Name:              "strong official",
			Definition:        "d",
			SourceType:        core.SourceTypeOfficial,
			CredibilityWeight: 1.0,
			Vector:            []float32{0.9, 0.43589},
		},
		&core.Concept{
			Name:              "mid student",
			Definition:        "d",
			SourceType:        core.SourceTypeStudent,
			CredibilityWeight: 0.5,
			Vector:            []float32{0.6, 0.8},
		},
		&core.Concept{
			Name:              "weak official",
			Definition:        "d",
			SourceType:        core.SourceTypeOfficial,
			CredibilityWeight: 1.0,
			Vector:            []float32{0.3, 0.953939},
		},
	)
	require.NoError(t, err)

	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	params := DefaultParams()
	params.Limit = 5
	params.Threshold = 0.5

	results, err := engine.Search(context.Background(), "query", params)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "strong official", results[0].Concept.Name)
	assert.InDelta(t, 0.9, float64(results[0].WeightedScore), 1e-3)
	assert.Equal(t, "mid student", results[1].Concept.Name)
	assert.InDelta(t, 0.3, float64(results[1].WeightedScore), 1e-3)
}

func TestSearch_ThresholdFiltering(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	params := DefaultParams()
	params.Threshold = 0.9
	results, err := engine.Search(context.Background(), "feedback", params)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "feedback loop", results[0].Concept.Name)
}

func TestSearch_SourceTypeFilter(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	params := DefaultParams()
	params.SourceTypes = []core.SourceType{core.SourceTypeStudent}
	results, err := engine.Search(context.Background(), "feedback", params)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "student heuristic", results[0].Concept.Name)
}

func TestSearch_TieBreakByName(t *testing.T) {
	store := storagemock.NewMockStore()
	_, err := store.AddConcepts(context.Background(),
		&core.Concept{
			Name:       "zeta",
			Definition: "d",
			SourceType: core.SourceTypeOfficial,
			Vector:     []float32{1, 0},
		},
		&core.Concept{
			Name:       "alpha",
			Definition: "d",
			SourceType: core.SourceTypeOfficial,
			Vector:     []float32{1, 0},
		},
	)
	require.NoError(t, err)

	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "anything", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Concept.Name)
	assert.Equal(t, "zeta", results[1].Concept.Name)
}

func TestSearch_EncodesMissingVectors(t *testing.T) {
	store := storagemock.NewMockStore()
	_, err := store.AddConcepts(context.Background(),
		&core.Concept{
			Name:       "raw concept",
			Definition: "stored before the index was built",
			SourceType: core.SourceTypeOfficial,
		},
	)
	require.NoError(t, err)

	embedder := fixedQueryEmbedder([]float32{1, 0})
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}
	provider := aimock.NewMockProviderWithEmbedder(embedder)

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "raw", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "raw concept", results[0].Concept.Name)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-5)
}

func TestSearch_SequentialFallbackOnBatchFailure(t *testing.T) {
	store := storagemock.NewMockStore()
	_, err := store.AddConcepts(context.Background(),
		&core.Concept{
			Name:       "resilient concept",
			Definition: "survives batch failures",
			SourceType: core.SourceTypeOfficial,
		},
	)
	require.NoError(t, err)

	embedder := fixedQueryEmbedder([]float32{1, 0})
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("batch endpoint down")
	}
	provider := aimock.NewMockProviderWithEmbedder(embedder)

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "resilient", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "resilient concept", results[0].Concept.Name)
}

func TestSearch_IndexedPath(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	require.NoError(t, store.SetIndexMeta(context.Background(), indexMeta()))

	var capturedK int
	store.QueryByVectorFunc = func(ctx context.Context, vector []float32, k int, threshold float32, sourceTypes []core.SourceType) ([]*core.SearchResult, error) {
		capturedK = k
		return []*core.SearchResult{
			core.NewSearchResult(&core.Concept{
				Name:              "feedback loop",
				SourceType:        core.SourceTypeOfficial,
				CredibilityWeight: 1.0,
			}, 1.0),
			core.NewSearchResult(&core.Concept{
				Name:              "student heuristic",
				SourceType:        core.SourceTypeStudent,
				CredibilityWeight: 0.5,
			}, 0.7),
		}, nil
	}

	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	engine, err := NewEngine(store, store, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "feedback", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "feedback loop", results[0].Concept.Name)

	// Limit 10 overfetches 30 candidates for re-ranking.
	assert.Equal(t, 30, capturedK)
	assert.Zero(t, store.FetchCallCount())
}

func TestSearch_OverfetchCap(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	require.NoError(t, store.SetIndexMeta(context.Background(), indexMeta()))

	var capturedK int
	store.QueryByVectorFunc = func(ctx context.Context, vector []float32, k int, threshold float32, sourceTypes []core.SourceType) ([]*core.SearchResult, error) {
		capturedK = k
		return []*core.SearchResult{}, nil
	}

	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	engine, err := NewEngine(store, store, provider)
	require.NoError(t, err)
	defer engine.Release()

	params := DefaultParams()
	params.Limit = 50
	_, err = engine.Search(context.Background(), "feedback", params)
	require.NoError(t, err)
	assert.Equal(t, 100, capturedK)
}

func TestSearch_IndexFailureFallsBackToHybrid(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	require.NoError(t, store.SetIndexMeta(context.Background(), indexMeta()))
	store.QueryByVectorFunc = func(ctx context.Context, vector []float32, k int, threshold float32, sourceTypes []core.SourceType) ([]*core.SearchResult, error) {
		return nil, errors.New("index corrupted")
	}

	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	engine, err := NewEngine(store, store, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "feedback", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "feedback loop", results[0].Concept.Name)
	assert.Equal(t, 1, store.FetchCallCount())
}

func TestSearch_IndexNotBuiltUsesHybrid(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)

	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	engine, err := NewEngine(store, store, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "feedback", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Zero(t, store.QueryCallCount())
	assert.Equal(t, 1, store.FetchCallCount())
}

func TestSearch_CacheHit(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	ctx := context.Background()
	first, err := engine.Search(ctx, "feedback", DefaultParams())
	require.NoError(t, err)
	second, err := engine.Search(ctx, "feedback", DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.FetchCallCount())
}

func TestSearch_CacheBypass(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	params := DefaultParams()
	params.UseCache = false

	ctx := context.Background()
	_, err = engine.Search(ctx, "feedback", params)
	require.NoError(t, err)
	_, err = engine.Search(ctx, "feedback", params)
	require.NoError(t, err)
	assert.Equal(t, 2, store.FetchCallCount())
}

func TestSearch_DegradedMode(t *testing.T) {
	store := storagemock.NewMockStore()
	_, err := store.AddConcepts(context.Background(),
		&core.Concept{
			Name:              "системное мышление",
			Definition:        "подход к анализу сложных систем",
			SourceType:        core.SourceTypeOfficial,
			CredibilityWeight: 1.0,
		},
		&core.Concept{
			Name:       "feedback loop",
			Definition: "a circular chain of cause and effect",
			SourceType: core.SourceTypeOfficial,
		},
	)
	require.NoError(t, err)

	engine, err := NewEngine(store, nil, nil)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "системное", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "системное мышление", results[0].Concept.Name)
	assert.InDelta(t, 0.7, float64(results[0].Similarity), 1e-5)
}

func TestSearch_DegradedOnEncodingFailure(t *testing.T) {
	store := storagemock.NewMockStore()
	_, err := store.AddConcepts(context.Background(),
		&core.Concept{
			Name:       "emergence",
			Definition: "behavior of the whole not present in the parts",
			SourceType: core.SourceTypeOfficial,
		},
	)
	require.NoError(t, err)

	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model not loaded")
	}
	provider := aimock.NewMockProviderWithEmbedder(embedder)

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	results, err := engine.Search(context.Background(), "emergence", DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.7, float64(results[0].Similarity), 1e-5)
}

func TestSearch_MonitorCallbacks(t *testing.T) {
	store := storagemock.NewMockStore()
	seedConcepts(t, store)
	provider := aimock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	engine, err := NewEngine(store, nil, provider)
	require.NoError(t, err)
	defer engine.Release()

	monitor := &recordingMonitor{}
	results, err := engine.SearchWithMonitor(context.Background(), "feedback", DefaultParams(), monitor)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "feedback", monitor.startedQuery)
	assert.Equal(t, ModeHybrid, monitor.mode)
	assert.Equal(t, 3, monitor.candidates)
	assert.Len(t, monitor.finished, len(results))
}

func TestParamsNormalization(t *testing.T) {
	p := Params{Limit: -1, Threshold: 1.5}.normalized()
	assert.Equal(t, 10, p.Limit)
	assert.InDelta(t, 0.5, float64(p.Threshold), 1e-6)

	p = Params{Limit: 3, Threshold: 0.8}.normalized()
	assert.Equal(t, 3, p.Limit)
	assert.InDelta(t, 0.8, float64(p.Threshold), 1e-6)
}

// recordingMonitor captures monitor callbacks for assertions.
type recordingMonitor struct {
	startedQuery string
	mode         Mode
	candidates   int
	finished     []*core.SearchResult
	cacheHits    int
}

var _ SearchMonitor = (*recordingMonitor)(nil)

func (r *recordingMonitor) Start(query string)  { r.startedQuery = query }
func (r *recordingMonitor) CacheHit(_ string)   { r.cacheHits++ }
func (r *recordingMonitor) ModeSelected(m Mode) { r.mode = m }
func (r *recordingMonitor) AfterIndexedQuery(_ []*core.SearchResult, _ error) {}
func (r *recordingMonitor) AfterCandidateFetch(count int) { r.candidates = count }
func (r *recordingMonitor) AfterEncoding(_ int)           {}
func (r *recordingMonitor) Finish(results []*core.SearchResult) { r.finished = results }
