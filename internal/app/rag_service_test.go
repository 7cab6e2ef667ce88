package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/embedding"
	"studybuddy/internal/vectorstore"
	"studybuddy/internal/vectorstore/memory"
)

// threeTopicText builds 450 words where each 200-word window is about a
// different subject.
func threeTopicText() string {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "glacier%d ", i%7)
	}
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "photosynthesis chlorophyll%d ", i%3)
	}
	for i := 0; i < 50; i++ {
		b.WriteString("volcano ")
	}
	return b.String()
}

func TestReplaceIndexClearsAndUploads(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{{ID: "old", Vector: make([]float32, 384)}}))
	ledger := &memoryLedger{}
	rag := newTestRAG(store, ledger)

	text := threeTopicText()
	require.Len(t, strings.Fields(text), 450)

	res, err := rag.ReplaceIndex(ctx, Document{Name: "notes.txt", Text: text})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ChunkCount)
	assert.Equal(t, 3, store.Len())
	require.Len(t, ledger.docs, 1)
	assert.Equal(t, "notes.txt", ledger.docs[0].Filename)
	assert.Equal(t, 3, ledger.docs[0].ChunkCount)
}

func TestReplaceIndexContinuesWhenClearFails(t *testing.T) {
	ctx := context.Background()
	store := failingDeleteStore{memory.New()}
	rag := newTestRAG(store, nil)

	res, err := rag.ReplaceIndex(ctx, Document{Name: "a.txt", Text: "one two three"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunkCount)
	assert.Equal(t, 1, store.Len())
}

func TestReplaceIndexEmptyDocument(t *testing.T) {
	store := memory.New()
	rag := newTestRAG(store, nil)

	res, err := rag.ReplaceIndex(context.Background(), Document{Name: "empty.txt", Text: "  \n "})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ChunkCount)
	assert.Equal(t, 0, store.Len())
}

func TestReplaceIndexChunksPagesSeparately(t *testing.T) {
	store := memory.New()
	rag := newTestRAG(store, nil)

	res, err := rag.ReplaceIndex(context.Background(), Document{Name: "a.pdf", Pages: []string{"page one", "", "page three"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ChunkCount)
}

func TestRetrieveFindsRelevantChunk(t *testing.T) {
	ctx := context.Background()
	rag := newTestRAG(memory.New(), nil)
	_, err := rag.ReplaceIndex(ctx, Document{Name: "notes.txt", Text: threeTopicText()})
	require.NoError(t, err)

	hits, err := rag.Retrieve(ctx, "photosynthesis chlorophyll0 chlorophyll1", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.True(t, strings.HasPrefix(hits[0].Text, "photosynthesis"))
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)

	none, err := rag.Retrieve(ctx, "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIngestOverwritesByDocumentID(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ledger := &memoryLedger{}
	rag := newTestRAG(store, ledger)

	docs := []Document{{ID: "data/a.md", Name: "a.md", Text: "alpha beta"}, {ID: "data/b.md", Name: "b.md", Text: "gamma"}}
	res, err := rag.Ingest(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ChunkCount)
	assert.Equal(t, []string{"data/a.md", "data/b.md"}, res.DocumentIDs)

	_, err = rag.Ingest(ctx, docs[:1])
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, ledger.docs[0].ID, ledger.docs[2].ID)
}

func TestIndexPropagatesModelError(t *testing.T) {
	store := memory.New()
	rag := NewRAGService(failingEmbedder{}, store, nil, RAGOptions{})

	_, err := rag.ReplaceIndex(context.Background(), Document{Name: "a.txt", Text: "some words"})
	var modelErr *embedding.ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.Equal(t, 0, store.Len())

	_, err = rag.Retrieve(context.Background(), "q", 3)
	assert.True(t, errors.As(err, &modelErr))
}

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument("dir/Notes.TXT", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "Notes.TXT", doc.Name)
	assert.Equal(t, "hello world", doc.Text)

	_, err = LoadDocument("slides.pptx", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = LoadDocument("bad.txt", strings.NewReader("\xff\xfe"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.True(t, SupportedExtension("a.md"))
	assert.False(t, SupportedExtension("a.docx"))
}
