package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studybuddy/internal/model"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts the evaluation. Re-delivered messages carry the same id and
// are ignored.
func (r *EvaluationRepository) Create(ctx context.Context, eval *model.Evaluation) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&model.Evaluation{}).Where("id = ?", eval.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("check evaluation failed: %w", err)
	}
	if existing > 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(eval).Error; err != nil {
		return fmt.Errorf("create evaluation failed: %w", err)
	}
	return nil
}

func (r *EvaluationRepository) ListRecent(ctx context.Context, limit int) ([]model.Evaluation, error) {
	var evals []model.Evaluation
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(listLimit(limit)).Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("list evaluations failed: %w", err)
	}
	return evals, nil
}

// ListByQuizID returns the oldest maxListLimit gradings of one quiz.
func (r *EvaluationRepository) ListByQuizID(ctx context.Context, quizID string) ([]model.Evaluation, error) {
	var evals []model.Evaluation
	if err := r.db.WithContext(ctx).Where("quiz_id = ?", quizID).Order("created_at ASC").Limit(maxListLimit).Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("list quiz evaluations failed: %w", err)
	}
	return evals, nil
}
