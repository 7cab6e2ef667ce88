package app

import (
	"context"
	"fmt"

	"studybuddy/internal/model"
)

// StudyService runs the tutor then quiz workflow for one question.
type StudyService struct {
	tutor *TutorService
	quiz  *QuizService
}

func NewStudyService(tutor *TutorService, quiz *QuizService) *StudyService {
	return &StudyService{tutor: tutor, quiz: quiz}
}

type StudyResult struct {
	TutorAnswer string      `json:"tutor_answer"`
	Quiz        *model.Quiz `json:"quiz"`
}

func (s *StudyService) Run(ctx context.Context, question string, count int) (*StudyResult, error) {
	answer, err := s.tutor.Answer(ctx, question)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quiz.Create(ctx, question, count)
	if err != nil {
		return nil, fmt.Errorf("study quiz failed: %w", err)
	}
	return &StudyResult{TutorAnswer: answer, Quiz: quiz}, nil
}
