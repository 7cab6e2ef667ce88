package model

import "time"

type Evaluation struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	QuizID          string    `gorm:"size:64;index" json:"quiz_id,omitempty"`
	Question        string    `gorm:"type:text;not null" json:"question"`
	ReferenceAnswer string    `gorm:"type:text" json:"reference_answer"`
	StudentAnswer   string    `gorm:"type:text;not null" json:"student_answer"`
	Score           float64   `gorm:"not null" json:"score"`
	Feedback        string    `gorm:"type:text" json:"feedback"`
	Strengths       []string  `gorm:"serializer:json;type:text" json:"strengths"`
	Weaknesses      []string  `gorm:"serializer:json;type:text" json:"weaknesses"`
	CorrectedAnswer string    `gorm:"type:text" json:"corrected_answer"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}
