package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty enumerates question difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Option is one answer choice of a question. Option IDs are stable and
// unique within their question, not globally.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question represents a multiple-choice question bank entry.
// Invariant: exactly one option has IsCorrect=true; 2–6 options.
type Question struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	Options     []Option   `json:"options"`
	Explanation string     `json:"explanation,omitempty"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	CreatedByID uuid.UUID  `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CorrectOptionID returns the id of the option marked correct, or "" if the
// stored row violates the single-correct invariant.
func (q *Question) CorrectOptionID() string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	return ""
}

// OptionRequest is one answer choice in a create/update payload.
type OptionRequest struct {
	ID        string `json:"id" binding:"required,min=1,max=10"`
	Text      string `json:"text" binding:"required,min=1,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionRequest is the payload for creating or updating a question.
// Option-level invariants (exactly one correct, unique ids) are checked in
// the service since they span multiple fields.
type QuestionRequest struct {
	Text        string          `json:"text" binding:"required,min=1,max=1000"`
	Options     []OptionRequest `json:"options" binding:"required,min=2,max=6,dive"`
	Explanation string          `json:"explanation" binding:"omitempty,max=1000"`
	Category    string          `json:"category" binding:"required,min=1,max=50"`
	Difficulty  Difficulty      `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
}
