package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Exam represents an assembled exam: metadata plus an ordered list of
// question references.
type Exam struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Instructions     string     `json:"instructions,omitempty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	PassingScore     int        `json:"passing_score"`
	MaxAttempts      int        `json:"max_attempts"` // 0 = unlimited
	IsActive         bool       `json:"is_active"`
	AvailableFrom    *time.Time `json:"available_from,omitempty"`
	AvailableUntil   *time.Time `json:"available_until,omitempty"`
	QuestionCount    int        `json:"question_count"`
	CreatedByID      uuid.UUID  `json:"created_by_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AvailableAt reports whether the exam can be taken at t: it must be active
// and t must fall inside the optional availability window.
func (e *Exam) AvailableAt(t time.Time) bool {
	if !e.IsActive {
		return false
	}
	if e.AvailableFrom != nil && t.Before(*e.AvailableFrom) {
		return false
	}
	if e.AvailableUntil != nil && t.After(*e.AvailableUntil) {
		return false
	}
	return true
}

// SubmittableAt reports whether a submission may land at t. It extends
// AvailableAt by one time limit past the window close, so a run started just
// before the window shut can still auto-submit when its timer expires.
func (e *Exam) SubmittableAt(t time.Time) bool {
	if e.AvailableAt(t) {
		return true
	}
	if !e.IsActive || e.AvailableUntil == nil {
		return false
	}
	if e.AvailableFrom != nil && t.Before(*e.AvailableFrom) {
		return false
	}
	grace := time.Duration(e.TimeLimitMinutes) * time.Minute
	return !t.After(e.AvailableUntil.Add(grace))
}

// ExamQuestion pairs a question with its 1-based presentation order within
// one exam.
type ExamQuestion struct {
	Question
	OrderNum int `json:"order_num"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title            string      `json:"title" binding:"required,min=1,max=100"`
	Description      string      `json:"description" binding:"omitempty,max=500"`
	Instructions     string      `json:"instructions" binding:"omitempty,max=2000"`
	TimeLimitMinutes int         `json:"time_limit_minutes" binding:"required,min=5,max=300"`
	PassingScore     int         `json:"passing_score" binding:"min=0,max=100"`
	MaxAttempts      int         `json:"max_attempts" binding:"min=0,max=10"`
	IsActive         *bool       `json:"is_active" binding:"omitempty"`
	AvailableFrom    *time.Time  `json:"available_from" binding:"omitempty"`
	AvailableUntil   *time.Time  `json:"available_until" binding:"omitempty,gtfield=AvailableFrom"`
	QuestionIDs      []uuid.UUID `json:"question_ids" binding:"required,min=1,max=100"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title            string      `json:"title" binding:"omitempty,min=1,max=100"`
	Description      *string     `json:"description" binding:"omitempty"`
	Instructions     *string     `json:"instructions" binding:"omitempty"`
	TimeLimitMinutes int         `json:"time_limit_minutes" binding:"omitempty,min=5,max=300"`
	PassingScore     *int        `json:"passing_score" binding:"omitempty,min=0,max=100"`
	MaxAttempts      *int        `json:"max_attempts" binding:"omitempty,min=0,max=10"`
	IsActive         *bool       `json:"is_active" binding:"omitempty"`
	AvailableFrom    *time.Time  `json:"available_from" binding:"omitempty"`
	AvailableUntil   *time.Time  `json:"available_until" binding:"omitempty"`
	QuestionIDs      []uuid.UUID `json:"question_ids" binding:"omitempty,min=1,max=100"`
}

// ────────────────────────────────────────────────────────────────────────────
// Exam views
// ────────────────────────────────────────────────────────────────────────────

// OptionView is an option as rendered in an exam view. IsCorrect is a
// pointer so the redacted view omits the field entirely instead of sending
// a misleading false.
type OptionView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

// QuestionView is a question as rendered in an exam view.
type QuestionView struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	Options     []OptionView `json:"options"`
	Explanation string     `json:"explanation,omitempty"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	OrderNum    int        `json:"order_num"`
}

// ExamView is the assembled exam as sent to clients.
type ExamView struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Instructions     string         `json:"instructions,omitempty"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
	PassingScore     int            `json:"passing_score"`
	TotalQuestions   int            `json:"total_questions"`
	Questions        []QuestionView `json:"questions"`
}

// BuildExamView assembles an exam view from its ordered questions.
//
// With revealAnswers=false every option is stripped of its correctness flag
// and the explanation is omitted entirely — this is the one-way redaction
// that keeps the answer key server-side while an exam is being taken. With
// revealAnswers=true the full key is included (authoring, grading, review).
//
// Questions are sorted by OrderNum ascending; the sort is stable so ties
// keep insertion order. The function is pure: it never mutates its inputs.
func BuildExamView(exam *Exam, questions []ExamQuestion, revealAnswers bool) ExamView {
	ordered := make([]ExamQuestion, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderNum < ordered[j].OrderNum
	})

	views := make([]QuestionView, len(ordered))
	for i, q := range ordered {
		opts := make([]OptionView, len(q.Options))
		for j, opt := range q.Options {
			opts[j] = OptionView{ID: opt.ID, Text: opt.Text}
			if revealAnswers {
				isCorrect := opt.IsCorrect
				opts[j].IsCorrect = &isCorrect
			}
		}

		views[i] = QuestionView{
			ID:         q.ID,
			Text:       q.Text,
			Options:    opts,
			Category:   q.Category,
			Difficulty: q.Difficulty,
			OrderNum:   q.OrderNum,
		}
		if revealAnswers {
			views[i].Explanation = q.Explanation
		}
	}

	return ExamView{
		ID:               exam.ID,
		Title:            exam.Title,
		Description:      exam.Description,
		Instructions:     exam.Instructions,
		TimeLimitMinutes: exam.TimeLimitMinutes,
		PassingScore:     exam.PassingScore,
		TotalQuestions:   len(views),
		Questions:        views,
	}
}
