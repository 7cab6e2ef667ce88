package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"studybuddy/internal/embedding"
	"studybuddy/internal/model"
	"studybuddy/internal/vectorstore"
)

const defaultEmbedBatch = 32

// Retriever returns the topK stored chunks closest to query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]vectorstore.Hit, error)
}

// DocumentLedger records ingested documents. Optional.
type DocumentLedger interface {
	Create(ctx context.Context, doc *model.Document) error
}

type RAGOptions struct {
	ChunkWords int
	EmbedBatch int
}

// RAGService owns the retrieval pipeline: chunk, embed and upsert on the way
// in; embed and query on the way out. It caches nothing.
type RAGService struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	ledger   DocumentLedger

	chunkWords int
	embedBatch int
}

func NewRAGService(embedder embedding.Embedder, store vectorstore.Store, ledger DocumentLedger, opts RAGOptions) *RAGService {
	if opts.ChunkWords <= 0 {
		opts.ChunkWords = DefaultChunkWords
	}
	if opts.EmbedBatch <= 0 {
		opts.EmbedBatch = defaultEmbedBatch
	}
	return &RAGService{
		embedder:   embedder,
		store:      store,
		ledger:     ledger,
		chunkWords: opts.ChunkWords,
		embedBatch: opts.EmbedBatch,
	}
}

// EnsureIndex creates the vector collection sized for the embedder.
func (s *RAGService) EnsureIndex(ctx context.Context) error {
	if err := s.store.EnsureCollection(ctx, s.embedder.Dimension(), vectorstore.MetricCosine); err != nil {
		return fmt.Errorf("ensure collection failed: %w", err)
	}
	return nil
}

// Retrieve embeds query and returns at most topK hits by descending score.
func (s *RAGService) Retrieve(ctx context.Context, query string, topK int) ([]vectorstore.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}
	if len(vecs) != 1 {
		return nil, &embedding.ModelError{Model: s.embedder.ModelName(), Err: fmt.Errorf("got %d vectors for one query", len(vecs))}
	}

	hits, err := s.store.Query(ctx, vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("query vector store failed: %w", err)
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}
	ctxzap.Debug(ctx, "retrieved context", zap.Int("top_k", topK), zap.Int("hits", len(hits)))
	return hits, nil
}

type IngestResult struct {
	DocumentIDs []string `json:"document_ids"`
	ChunkCount  int      `json:"chunk_count"`
}

// Ingest indexes docs on top of what is already stored. Chunk ids are
// "<document id>#<n>", so ingesting the same document again overwrites it.
func (s *RAGService) Ingest(ctx context.Context, docs []Document) (*IngestResult, error) {
	result := &IngestResult{}
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = doc.Name
		}
		chunks := doc.chunks(s.chunkWords)
		ids := make([]string, len(chunks))
		for i := range chunks {
			ids[i] = doc.ID + "#" + strconv.Itoa(i)
		}
		if err := s.index(ctx, doc, chunks, ids); err != nil {
			return result, err
		}
		s.record(ctx, doc, len(chunks), model.DocumentSourceIngest)
		result.DocumentIDs = append(result.DocumentIDs, doc.ID)
		result.ChunkCount += len(chunks)
	}
	return result, nil
}

// ReplaceIndex clears the whole store and indexes doc alone. The clear is
// best effort: a failure is logged and indexing goes on.
func (s *RAGService) ReplaceIndex(ctx context.Context, doc Document) (*IngestResult, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if err := s.store.DeleteAll(ctx); err != nil {
		ctxzap.Warn(ctx, "could not clear vector store before upload", zap.Error(err))
	}

	chunks := doc.chunks(s.chunkWords)
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = uuid.NewString()
	}
	if err := s.index(ctx, doc, chunks, ids); err != nil {
		return nil, err
	}
	s.record(ctx, doc, len(chunks), model.DocumentSourceUpload)
	return &IngestResult{DocumentIDs: []string{doc.ID}, ChunkCount: len(chunks)}, nil
}

func (s *RAGService) index(ctx context.Context, doc Document, chunks, ids []string) error {
	if len(chunks) == 0 {
		return nil
	}

	records := make([]vectorstore.Record, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.embedBatch {
		end := min(start+s.embedBatch, len(chunks))
		vecs, err := s.embedder.Embed(ctx, chunks[start:end])
		if err != nil {
			return fmt.Errorf("embed chunks of %s failed: %w", doc.Name, err)
		}
		if len(vecs) != end-start {
			return &embedding.ModelError{Model: s.embedder.ModelName(),
				Err: fmt.Errorf("got %d vectors for %d chunks", len(vecs), end-start)}
		}
		for i, vec := range vecs {
			n := start + i
			records = append(records, vectorstore.Record{
				ID:     ids[n],
				Vector: vec,
				Metadata: map[string]string{
					vectorstore.MetadataText:   chunks[n],
					vectorstore.MetadataSource: doc.Name,
					vectorstore.MetadataChunk:  strconv.Itoa(n),
				},
			})
		}
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert chunks of %s failed: %w", doc.Name, err)
	}
	ctxzap.Info(ctx, "indexed document",
		zap.String("document", doc.Name),
		zap.Int("chunks", len(records)),
	)
	return nil
}

func (s *RAGService) record(ctx context.Context, doc Document, chunkCount int, source string) {
	if s.ledger == nil {
		return
	}
	entry := &model.Document{
		ID:         ledgerID(doc.ID),
		Filename:   doc.Name,
		Source:     source,
		ChunkCount: chunkCount,
		CreatedAt:  time.Now(),
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		ctxzap.Warn(ctx, "record document failed", zap.String("document", doc.Name), zap.Error(err))
	}
}

// ledgerID maps document ids that are not uuids (ingest paths) onto a
// stable uuid so re-ingesting a file updates its ledger row.
func ledgerID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}
