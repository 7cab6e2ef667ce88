package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"studybuddy/internal/llmjson"
	"studybuddy/internal/model"
	"studybuddy/internal/prompt"
)

// EvaluationRecorder persists a finished grading.
type EvaluationRecorder interface {
	Record(ctx context.Context, eval *model.Evaluation) error
}

// EvaluationRecorderFunc adapts a function to EvaluationRecorder.
type EvaluationRecorderFunc func(ctx context.Context, eval *model.Evaluation) error

func (f EvaluationRecorderFunc) Record(ctx context.Context, eval *model.Evaluation) error {
	return f(ctx, eval)
}

type EvalService struct {
	llm      Completer
	quizzes  *QuizService
	recorder EvaluationRecorder
}

func NewEvalService(llm Completer, quizzes *QuizService, recorder EvaluationRecorder) *EvalService {
	return &EvalService{llm: llm, quizzes: quizzes, recorder: recorder}
}

// Evaluate returns the raw model grading of studentAnswer.
func (s *EvalService) Evaluate(ctx context.Context, question, reference, studentAnswer string) (string, error) {
	raw, err := s.llm.Complete(ctx, prompt.Eval(question, reference, studentAnswer), prompt.EvalTemperature)
	if err != nil {
		return "", fmt.Errorf("evaluation completion failed: %w", err)
	}
	return raw, nil
}

// GradeInput names the question either directly or by quiz id and index.
type GradeInput struct {
	QuizID          string
	QuestionIndex   int
	Question        string
	ReferenceAnswer string
	StudentAnswer   string
}

type GradeResult struct {
	ID         string              `json:"id"`
	QuizID     string              `json:"quiz_id,omitempty"`
	Question   string              `json:"question"`
	Evaluation *llmjson.Evaluation `json:"evaluation"`
}

func (s *EvalService) Grade(ctx context.Context, input GradeInput) (*GradeResult, error) {
	student := strings.TrimSpace(input.StudentAnswer)
	if student == "" {
		return nil, fmt.Errorf("%w: student_answer is required", ErrInvalidInput)
	}

	question := strings.TrimSpace(input.Question)
	reference := strings.TrimSpace(input.ReferenceAnswer)
	if input.QuizID != "" {
		quiz, err := s.quizzes.Get(ctx, input.QuizID)
		if err != nil {
			return nil, err
		}
		if input.QuestionIndex < 0 || input.QuestionIndex >= len(quiz.Items) {
			return nil, fmt.Errorf("%w: question_index %d out of range", ErrInvalidInput, input.QuestionIndex)
		}
		item := quiz.Items[input.QuestionIndex]
		question, reference = item.Question, item.Answer
	}
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	raw, err := s.Evaluate(ctx, question, reference, student)
	if err != nil {
		return nil, err
	}
	eval, err := llmjson.ParseEvaluation(raw)
	if err != nil {
		return nil, err
	}

	result := &GradeResult{
		ID:         uuid.NewString(),
		QuizID:     input.QuizID,
		Question:   question,
		Evaluation: eval,
	}
	s.record(ctx, result, reference, student)
	return result, nil
}

func (s *EvalService) record(ctx context.Context, result *GradeResult, reference, student string) {
	if s.recorder == nil {
		ctxzap.Debug(ctx, "evaluation not persisted: no recorder configured")
		return
	}
	entry := &model.Evaluation{
		ID:              result.ID,
		QuizID:          result.QuizID,
		Question:        result.Question,
		ReferenceAnswer: reference,
		StudentAnswer:   student,
		Score:           result.Evaluation.Score,
		Feedback:        result.Evaluation.Feedback,
		Strengths:       result.Evaluation.Strengths,
		Weaknesses:      result.Evaluation.Weaknesses,
		CorrectedAnswer: result.Evaluation.CorrectedAnswer,
		CreatedAt:       time.Now(),
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		ctxzap.Warn(ctx, "record evaluation failed", zap.String("evaluation_id", entry.ID), zap.Error(err))
	}
}
