package coursegraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coursegraph/core"
)

func TestNewDatabase(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	assert.NotNil(t, db.ConceptStore())
	assert.NotNil(t, db.VectorIndex())
}

func TestDatabase_ConceptRoundTrip(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	added, err := db.ConceptStore().AddConcepts(ctx, &core.Concept{
		Name:       "feedback loop",
		Definition: "a circular chain of cause and effect",
		SourceType: core.SourceTypeOfficial,
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	got, err := db.ConceptStore().GetConceptByName(ctx, "feedback loop")
	require.NoError(t, err)
	assert.Equal(t, added[0].Id, got.Id)
}

func TestDatabase_NewSearchEngine(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	engine, err := db.NewSearchEngine()
	require.NoError(t, err)
	assert.NotNil(t, engine)
	engine.Release()
}
