package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/llmjson"
	"studybuddy/internal/prompt"
	"studybuddy/internal/vectorstore/memory"
)

const quizReply = `Here it is:
[{"question":"What is the powerhouse of the cell?","type":"mcq","choices":["Nucleus","Mitochondria"],"answer":"Mitochondria"},
 {"question":"Name the pigment used in photosynthesis.","type":"short","answer":"Chlorophyll"}]`

func TestQuizCreateDefaultsAndStores(t *testing.T) {
	llm := &fakeLLM{replies: []string{quizReply}}
	store := newMapQuizStore()
	svc := NewQuizService(newTestRAG(memory.New(), nil), llm, store, 0)

	quiz, err := svc.Create(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultQuizSubject, quiz.Subject)
	require.Len(t, quiz.Items, 2)
	assert.Equal(t, "Mitochondria", quiz.Items[0].Answer)

	call := llm.calls[0]
	assert.Equal(t, prompt.QuestionTemperature, call.temperature)
	assert.Contains(t, call.messages[1].Content, "Generate 5 quiz questions about: General Knowledge.")

	stored, err := svc.Get(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz, stored)
}

func TestQuizCreateReturnsParseError(t *testing.T) {
	llm := &fakeLLM{replies: []string{"Sorry, no quiz today."}}
	svc := NewQuizService(newTestRAG(memory.New(), nil), llm, newMapQuizStore(), 6)

	_, err := svc.Create(context.Background(), "cells", 3)
	var pe *llmjson.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, llmjson.ReasonNoJSON, pe.Reason)
	assert.Equal(t, "Sorry, no quiz today.", pe.Raw)
}

func TestQuizCreateRejectsTooManyQuestions(t *testing.T) {
	llm := &fakeLLM{}
	svc := NewQuizService(newTestRAG(memory.New(), nil), llm, nil, 6)

	_, err := svc.Create(context.Background(), "cells", 21)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, llm.calls)
}

func TestQuizGetMissing(t *testing.T) {
	svc := NewQuizService(newTestRAG(memory.New(), nil), &fakeLLM{}, newMapQuizStore(), 6)
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrQuizNotFound)

	noStore := NewQuizService(newTestRAG(memory.New(), nil), &fakeLLM{}, nil, 6)
	_, err = noStore.Get(context.Background(), "any")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizGenerateReturnsRaw(t *testing.T) {
	llm := &fakeLLM{replies: []string{"not json"}}
	svc := NewQuizService(newTestRAG(memory.New(), nil), llm, nil, 6)

	raw, err := svc.Generate(context.Background(), "volcanoes", 2)
	require.NoError(t, err)
	assert.Equal(t, "not json", raw)
	assert.Contains(t, llm.calls[0].messages[1].Content, "Context:\nvolcanoes\n\n")
}
