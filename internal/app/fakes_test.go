package app

import (
	"context"
	"errors"
	"sync"

	"studybuddy/internal/ai"
	"studybuddy/internal/embedding"
	"studybuddy/internal/model"
	"studybuddy/internal/vectorstore"
	"studybuddy/internal/vectorstore/memory"
)

type completion struct {
	messages    []ai.ChatMessage
	temperature float64
}

type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []completion
}

func (f *fakeLLM) Complete(_ context.Context, messages []ai.ChatMessage, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, completion{messages: messages, temperature: temperature})
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type failingDeleteStore struct {
	*memory.Store
}

func (failingDeleteStore) DeleteAll(context.Context) error {
	return errors.New("delete_all unavailable")
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, &embedding.ModelError{Model: "broken", Err: errors.New("model not loaded")}
}
func (failingEmbedder) Dimension() int    { return 8 }
func (failingEmbedder) ModelName() string { return "broken" }

type memoryLedger struct {
	docs []model.Document
}

func (l *memoryLedger) Create(_ context.Context, doc *model.Document) error {
	l.docs = append(l.docs, *doc)
	return nil
}

type mapQuizStore struct {
	quizzes map[string]*model.Quiz
}

func newMapQuizStore() *mapQuizStore {
	return &mapQuizStore{quizzes: make(map[string]*model.Quiz)}
}

func (s *mapQuizStore) Save(_ context.Context, quiz *model.Quiz) error {
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *mapQuizStore) Get(_ context.Context, id string) (*model.Quiz, bool, error) {
	q, ok := s.quizzes[id]
	return q, ok, nil
}

func newTestRAG(store vectorstore.Store, ledger DocumentLedger) *RAGService {
	return NewRAGService(embedding.NewHashingEmbedder(384), store, ledger, RAGOptions{ChunkWords: 200, EmbedBatch: 2})
}
