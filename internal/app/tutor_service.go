package app

import (
	"context"
	"fmt"
	"strings"

	"studybuddy/internal/ai"
	"studybuddy/internal/prompt"
)

// Completer sends chat messages to the LLM and returns its text answer.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage, temperature float64) (string, error)
}

const defaultTutorTopK = 4

type TutorService struct {
	retriever Retriever
	llm       Completer
	topK      int
}

func NewTutorService(retriever Retriever, llm Completer, topK int) *TutorService {
	if topK <= 0 {
		topK = defaultTutorTopK
	}
	return &TutorService{retriever: retriever, llm: llm, topK: topK}
}

// Answer grounds the question in retrieved chunks and appends a preview of
// the sources it used.
func (s *TutorService) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrInvalidInput
	}

	hits, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve tutor context failed: %w", err)
	}
	answer, err := s.llm.Complete(ctx, prompt.Tutor(question, hits), prompt.TutorTemperature)
	if err != nil {
		return "", fmt.Errorf("tutor completion failed: %w", err)
	}
	return answer + prompt.Provenance(hits), nil
}
