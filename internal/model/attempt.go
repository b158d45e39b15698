package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states. Attempts are created directly in
// COMPLETED state by the single-shot submit path; IN_PROGRESS exists for
// forward compatibility with resumable attempts.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)

// Attempt is one learner's raw submission event for one exam: the answers
// as given plus timing. Immutable once COMPLETED.
type Attempt struct {
	ID        uuid.UUID         `json:"id"`
	StudentID uuid.UUID         `json:"student_id"`
	ExamID    uuid.UUID         `json:"exam_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Answers   map[string]string `json:"answers"` // questionID → selected option ID
	Score     int               `json:"score"`   // raw correct count
	Status    AttemptStatus     `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// AnswerInput is one submitted answer.
type AnswerInput struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedOption string    `json:"selected_option" binding:"required,min=1,max=10"`
}

// SubmitExamRequest is the payload for submitting an exam.
//
// An empty answers list is deliberately allowed: a timed-out learner who
// answered nothing still gets a scored attempt (0%), never an error.
type SubmitExamRequest struct {
	Answers          []AnswerInput `json:"answers" binding:"omitempty,dive"`
	TimeSpentMinutes int           `json:"time_spent_minutes" binding:"min=0,max=500"`
	SubmittedAt      *time.Time    `json:"submitted_at" binding:"omitempty"`
}

// AnswerMap collapses the answer list into a questionID → option map.
// Later entries win on duplicate question ids.
func (r *SubmitExamRequest) AnswerMap() map[string]string {
	m := make(map[string]string, len(r.Answers))
	for _, a := range r.Answers {
		m[a.QuestionID.String()] = a.SelectedOption
	}
	return m
}
