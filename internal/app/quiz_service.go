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

const (
	DefaultQuizSubject   = "General Knowledge"
	DefaultQuizQuestions = 5
	maxQuizQuestions     = 20
	defaultQuestionTopK  = 6
)

// QuizStore keeps generated quizzes for later grading. Get reports a miss
// with ok == false and a nil error.
type QuizStore interface {
	Save(ctx context.Context, quiz *model.Quiz) error
	Get(ctx context.Context, id string) (quiz *model.Quiz, ok bool, err error)
}

type QuizService struct {
	retriever Retriever
	llm       Completer
	store     QuizStore
	topK      int
}

func NewQuizService(retriever Retriever, llm Completer, store QuizStore, topK int) *QuizService {
	if topK <= 0 {
		topK = defaultQuestionTopK
	}
	return &QuizService{retriever: retriever, llm: llm, store: store, topK: topK}
}

// Generate returns the raw model output for a quiz about topic.
func (s *QuizService) Generate(ctx context.Context, topic string, count int) (string, error) {
	hits, err := s.retriever.Retrieve(ctx, topic, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve quiz context failed: %w", err)
	}
	raw, err := s.llm.Complete(ctx, prompt.Question(topic, count, hits), prompt.QuestionTemperature)
	if err != nil {
		return "", fmt.Errorf("quiz completion failed: %w", err)
	}
	return raw, nil
}

// Create generates, parses and stores a quiz. A *llmjson.ParseError is
// returned as is so callers can show the raw output.
func (s *QuizService) Create(ctx context.Context, subject string, count int) (*model.Quiz, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultQuizSubject
	}
	if count <= 0 {
		count = DefaultQuizQuestions
	}
	if count > maxQuizQuestions {
		return nil, fmt.Errorf("%w: num_questions must be at most %d", ErrInvalidInput, maxQuizQuestions)
	}

	raw, err := s.Generate(ctx, subject, count)
	if err != nil {
		return nil, err
	}
	items, err := llmjson.ParseQuiz(raw)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		ID:        uuid.NewString(),
		Subject:   subject,
		Items:     items,
		CreatedAt: time.Now(),
	}
	if s.store != nil {
		if err := s.store.Save(ctx, quiz); err != nil {
			ctxzap.Warn(ctx, "save quiz failed", zap.String("quiz_id", quiz.ID), zap.Error(err))
		}
	}
	return quiz, nil
}

func (s *QuizService) Get(ctx context.Context, id string) (*model.Quiz, error) {
	if s.store == nil || strings.TrimSpace(id) == "" {
		return nil, ErrQuizNotFound
	}
	quiz, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load quiz failed: %w", err)
	}
	if !ok {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}
