package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/vectorstore"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.EnsureCollection(ctx, 3, vectorstore.MetricCosine))

	require.NoError(t, s.Upsert(ctx, []vectorstore.Record{
		{ID: "a", Vector: []float32{1, 0, 0}, Metadata: map[string]string{"text": "alpha"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Metadata: map[string]string{"text": "beta"}},
		{ID: "c", Vector: []float32{0.9, 0.1, 0}, Metadata: map[string]string{"text": "gamma"}},
	}))

	hits, err := s.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "alpha", hits[0].Text)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "c", hits[1].ID)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Upsert(ctx, []vectorstore.Record{{ID: "a", Vector: []float32{1, 0}, Metadata: map[string]string{"text": "old"}}}))
	require.NoError(t, s.Upsert(ctx, []vectorstore.Record{{ID: "a", Vector: []float32{0, 1}, Metadata: map[string]string{"text": "new"}}}))

	assert.Equal(t, 1, s.Len())
	hits, err := s.Query(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	assert.Equal(t, "new", hits[0].Text)
}

func TestStoreDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Upsert(ctx, []vectorstore.Record{{ID: "a", Vector: []float32{1}}}))
	require.NoError(t, s.DeleteAll(ctx))

	hits, err := s.Query(ctx, []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
