package model

import (
	"time"

	"studybuddy/internal/llmjson"
)

// Quiz is a generated quiz kept in the quiz cache so answers can be graded
// against it later.
type Quiz struct {
	ID        string             `json:"id"`
	Subject   string             `json:"subject"`
	Items     []llmjson.QuizItem `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}
