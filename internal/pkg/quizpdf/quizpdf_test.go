package quizpdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/llmjson"
	"studybuddy/internal/model"
)

func TestRender(t *testing.T) {
	quiz := &model.Quiz{
		ID:      "q1",
		Subject: "Café biology",
		Items: []llmjson.QuizItem{
			{Question: "Which organelle makes ATP?", Type: llmjson.TypeMCQ, Choices: []string{"Nucleus", "Mitochondria"}, Answer: "Mitochondria"},
			{Question: "Define osmosis.", Type: llmjson.TypeShort, Answer: "Diffusion of water"},
		},
		CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	plain, err := Render(quiz, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(plain, []byte("%PDF-")))

	answers, err := Render(quiz, Options{WithAnswers: true, FontPath: "does/not/exist.ttf"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(answers, []byte("%PDF-")))
}
