// Package memory is an in-process vector store with brute-force search.
package memory

import (
	"context"
	"sync"

	"studybuddy/internal/vectorstore"
)

type Store struct {
	mu      sync.RWMutex
	records map[string]vectorstore.Record
}

func New() *Store {
	return &Store{records: make(map[string]vectorstore.Record)}
}

func (s *Store) EnsureCollection(context.Context, int, vectorstore.Metric) error {
	return nil
}

func (s *Store) Upsert(_ context.Context, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		meta := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		s.records[r.ID] = vectorstore.Record{ID: r.ID, Vector: vec, Metadata: meta}
	}
	return nil
}

func (s *Store) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]vectorstore.Record)
	return nil
}

func (s *Store) Query(_ context.Context, vector []float32, topK int) ([]vectorstore.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]vectorstore.Hit, 0, len(s.records))
	for id, r := range s.records {
		hits = append(hits, vectorstore.Hit{
			ID:    id,
			Score: vectorstore.Cosine(vector, r.Vector),
			Text:  r.Metadata[vectorstore.MetadataText],
		})
	}
	return vectorstore.TopK(hits, topK), nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
