package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the derived, immutable grade record for one completed Attempt.
// It is the system's record of truth for grade history: it is written once
// inside the submit transaction and never recomputed, even if the exam's
// question set changes later.
type Result struct {
	ID         uuid.UUID `json:"id"`
	AttemptID  uuid.UUID `json:"attempt_id"`
	StudentID  uuid.UUID `json:"student_id"`
	ExamID     uuid.UUID `json:"exam_id"`
	Score      int       `json:"score"` // raw correct count
	Percentage int       `json:"percentage"`
	Passed     bool      `json:"passed"`
	Feedback   string    `json:"feedback"`
	CreatedAt  time.Time `json:"created_at"`
}
