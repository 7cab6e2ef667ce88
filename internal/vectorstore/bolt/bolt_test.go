package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/vectorstore"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.EnsureCollection(ctx, 2, vectorstore.MetricCosine))
	require.NoError(t, s.EnsureCollection(ctx, 2, vectorstore.MetricCosine))

	require.NoError(t, s.Upsert(ctx, []vectorstore.Record{
		{ID: "x", Vector: []float32{1, 0}, Metadata: map[string]string{"text": "first"}},
		{ID: "y", Vector: []float32{0, 1}, Metadata: map[string]string{"text": "second"}},
	}))

	hits, err := s.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "y", hits[0].ID)
	assert.Equal(t, "second", hits[0].Text)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestBoltDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.EnsureCollection(ctx, 2, vectorstore.MetricCosine))
	require.NoError(t, s.Upsert(ctx, []vectorstore.Record{{ID: "x", Vector: []float32{1, 0}}}))
	require.NoError(t, s.DeleteAll(ctx))

	hits, err := s.Query(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBoltQueryBeforeEnsure(t *testing.T) {
	s := openTemp(t)
	hits, err := s.Query(context.Background(), []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
