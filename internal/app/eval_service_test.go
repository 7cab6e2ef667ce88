package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/llmjson"
	"studybuddy/internal/model"
	"studybuddy/internal/prompt"
	"studybuddy/internal/vectorstore/memory"
)

const evalReply = `{"score": 70, "feedback": "Close.", "strengths": ["names the organelle"], "weaknesses": ["no detail"], "corrected_answer": "Mitochondria produce ATP."}`

func newTestEval(llm *fakeLLM, store QuizStore, recorder EvaluationRecorder) *EvalService {
	quizzes := NewQuizService(newTestRAG(memory.New(), nil), llm, store, 6)
	return NewEvalService(llm, quizzes, recorder)
}

func TestEvaluateUsesZeroTemperature(t *testing.T) {
	llm := &fakeLLM{replies: []string{"raw grading"}}
	svc := newTestEval(llm, nil, nil)

	raw, err := svc.Evaluate(context.Background(), "Q?", "ref", "mine")
	require.NoError(t, err)
	assert.Equal(t, "raw grading", raw)
	assert.Equal(t, prompt.EvalTemperature, llm.calls[0].temperature)
	assert.Contains(t, llm.calls[0].messages[1].Content, "Student answer: mine")
}

func TestGradeFromQuizRecordsEvaluation(t *testing.T) {
	store := newMapQuizStore()
	store.quizzes["q1"] = &model.Quiz{ID: "q1", Items: []llmjson.QuizItem{
		{Question: "What is the powerhouse of the cell?", Type: llmjson.TypeShort, Answer: "Mitochondria"},
	}, CreatedAt: time.Now()}

	var recorded *model.Evaluation
	recorder := EvaluationRecorderFunc(func(_ context.Context, e *model.Evaluation) error {
		recorded = e
		return nil
	})
	llm := &fakeLLM{replies: []string{evalReply}}
	svc := newTestEval(llm, store, recorder)

	res, err := svc.Grade(context.Background(), GradeInput{QuizID: "q1", StudentAnswer: "the mitochondria"})
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.Evaluation.Score)
	assert.Equal(t, "What is the powerhouse of the cell?", res.Question)
	assert.Contains(t, llm.calls[0].messages[1].Content, "Reference answer: Mitochondria")

	require.NotNil(t, recorded)
	assert.Equal(t, res.ID, recorded.ID)
	assert.Equal(t, "q1", recorded.QuizID)
	assert.Equal(t, "Mitochondria", recorded.ReferenceAnswer)
	assert.Equal(t, []string{"no detail"}, recorded.Weaknesses)
}

func TestGradeValidation(t *testing.T) {
	store := newMapQuizStore()
	store.quizzes["q1"] = &model.Quiz{ID: "q1", Items: []llmjson.QuizItem{{Question: "Q", Answer: "A"}}}
	llm := &fakeLLM{replies: []string{evalReply}}
	svc := newTestEval(llm, store, nil)
	ctx := context.Background()

	_, err := svc.Grade(ctx, GradeInput{Question: "Q"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Grade(ctx, GradeInput{StudentAnswer: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Grade(ctx, GradeInput{QuizID: "q1", QuestionIndex: 1, StudentAnswer: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Grade(ctx, GradeInput{QuizID: "missing", StudentAnswer: "x"})
	assert.ErrorIs(t, err, ErrQuizNotFound)

	assert.Empty(t, llm.calls)
}

func TestGradeRecorderFailureIsNotFatal(t *testing.T) {
	recorder := EvaluationRecorderFunc(func(context.Context, *model.Evaluation) error {
		return errors.New("broker down")
	})
	svc := newTestEval(&fakeLLM{replies: []string{evalReply}}, nil, recorder)

	res, err := svc.Grade(context.Background(), GradeInput{Question: "Q", StudentAnswer: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Close.", res.Evaluation.Feedback)
}

func TestGradeParseError(t *testing.T) {
	svc := newTestEval(&fakeLLM{replies: []string{"great answer!"}}, nil, nil)
	_, err := svc.Grade(context.Background(), GradeInput{Question: "Q", StudentAnswer: "x"})
	var pe *llmjson.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, llmjson.ReasonNoJSON, pe.Reason)
}
