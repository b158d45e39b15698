package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/examhub/examhub-backend/internal/config"
	"github.com/examhub/examhub-backend/internal/grading"
	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/repository"
)

// Submission errors.
var (
	ErrNoQuestions  = errors.New("exam has no questions")
	ErrNoSubmission = errors.New("no completed submission for this exam")
)

// AttemptService handles exam submission, scoring persistence, review and
// attempt history.
type AttemptService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	attemptRepo  *repository.AttemptRepository
	rdb          *redis.Client
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	rdb *redis.Client,
) *AttemptService {
	return &AttemptService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		rdb:          rdb,
	}
}

// SubmissionSummary is what the student sees immediately after submitting.
// It carries the outcome only, never the per-question answer key; that is
// deferred to the review endpoint.
type SubmissionSummary struct {
	ResultID         uuid.UUID `json:"result_id"`
	AttemptID        uuid.UUID `json:"attempt_id"`
	ExamID           uuid.UUID `json:"exam_id"`
	Score            int       `json:"score"` // percentage
	Grade            string    `json:"grade"`
	Passed           bool      `json:"passed"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	SubmittedAt      time.Time `json:"submitted_at"`
	Feedback         string    `json:"feedback"`
}

// MonitorEvent is one live submission notification published to the exam's
// monitor channel.
type MonitorEvent struct {
	ExamID      uuid.UUID `json:"exam_id"`
	StudentID   uuid.UUID `json:"student_id"`
	Percentage  int       `json:"percentage"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Submit grades a student's answer set and persists the attempt and result
// atomically.
//
// Grading walks the exam's question list: unanswered questions count as
// incorrect and answers for ids outside the exam are ignored. An empty
// answer set is a valid submission and scores 0%. The attempt cap is
// enforced inside the persistence transaction, so concurrent submissions
// past the cap cannot both land.
func (s *AttemptService) Submit(ctx context.Context, examID, studentID uuid.UUID, req *model.SubmitExamRequest) (*SubmissionSummary, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.SubmittableAt(time.Now()) {
		return nil, ErrExamNotAvailable
	}

	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list exam questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	eval := grading.Evaluate(questions, req.AnswerMap())
	passed := grading.Passed(eval.Percentage, exam.PassingScore)

	submittedAt := time.Now()
	if req.SubmittedAt != nil {
		submittedAt = *req.SubmittedAt
	}
	startTime := submittedAt.Add(-time.Duration(req.TimeSpentMinutes) * time.Minute)

	attempt := &model.Attempt{
		StudentID: studentID,
		ExamID:    examID,
		StartTime: startTime,
		EndTime:   &submittedAt,
		Answers:   req.AnswerMap(),
		Score:     eval.CorrectCount,
		Status:    model.AttemptStatusCompleted,
	}
	result := &model.Result{
		StudentID:  studentID,
		ExamID:     examID,
		Score:      eval.CorrectCount,
		Percentage: eval.Percentage,
		Passed:     passed,
		Feedback:   grading.Feedback(passed, eval.Percentage),
	}

	if err := s.attemptRepo.SubmitCompleted(ctx, attempt, result, exam.MaxAttempts); err != nil {
		return nil, err
	}

	s.publishMonitorEvent(ctx, &MonitorEvent{
		ExamID:      examID,
		StudentID:   studentID,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
		SubmittedAt: submittedAt,
	})

	return &SubmissionSummary{
		ResultID:         result.ID,
		AttemptID:        attempt.ID,
		ExamID:           examID,
		Score:            result.Percentage,
		Grade:            grading.GradeOf(result.Percentage),
		Passed:           result.Passed,
		TotalQuestions:   eval.TotalQuestions,
		CorrectAnswers:   eval.CorrectCount,
		TimeSpentMinutes: req.TimeSpentMinutes,
		SubmittedAt:      submittedAt,
		Feedback:         result.Feedback,
	}, nil
}

// ReviewOption is one answer choice in a review, with both the key and the
// student's selection exposed.
type ReviewOption struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	IsSelected bool   `json:"is_selected"`
}

// ReviewQuestion is one question in a post-submission review.
type ReviewQuestion struct {
	QuestionID  uuid.UUID      `json:"question_id"`
	Text        string         `json:"text"`
	Options     []ReviewOption `json:"options"`
	UserAnswer  string         `json:"user_answer,omitempty"`
	Answered    bool           `json:"answered"`
	Correct     string         `json:"correct_answer"`
	IsCorrect   bool           `json:"is_correct"`
	Explanation string         `json:"explanation,omitempty"`
}

// Review is the full post-submission breakdown of a student's latest
// completed attempt, answer key revealed.
type Review struct {
	ExamID         uuid.UUID        `json:"exam_id"`
	ExamTitle      string           `json:"exam_title"`
	AttemptID      uuid.UUID        `json:"attempt_id"`
	Score          int              `json:"score"` // percentage
	Grade          string           `json:"grade"`
	Passed         bool             `json:"passed"`
	TotalQuestions int              `json:"total_questions"`
	CorrectAnswers int              `json:"correct_answers"`
	Feedback       string           `json:"feedback"`
	SubmittedAt    *time.Time       `json:"submitted_at,omitempty"`
	Questions      []ReviewQuestion `json:"questions"`
}

// GetReview builds the review of a student's most recent completed attempt.
// This is the only student-facing path that reveals correctness flags and
// explanations, and it only exists after a completed submission.
//
// The review grades the stored answers against the exam's current question
// set, while the summary figures come from the immutable result row. If the
// exam changed since submission the two can disagree; the stored result is
// the record of truth.
func (s *AttemptService) GetReview(ctx context.Context, examID, studentID uuid.UUID) (*Review, error) {
	attempt, result, err := s.attemptRepo.GetLatestCompleted(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSubmission
		}
		return nil, err
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list exam questions: %w", err)
	}

	review := &Review{
		ExamID:         examID,
		ExamTitle:      exam.Title,
		AttemptID:      attempt.ID,
		Score:          result.Percentage,
		Grade:          grading.GradeOf(result.Percentage),
		Passed:         result.Passed,
		TotalQuestions: len(questions),
		CorrectAnswers: result.Score,
		Feedback:       result.Feedback,
		SubmittedAt:    attempt.EndTime,
		Questions:      make([]ReviewQuestion, 0, len(questions)),
	}

	for _, q := range questions {
		selected := attempt.Answers[q.ID.String()]
		correctID := q.CorrectOptionID()

		options := make([]ReviewOption, len(q.Options))
		for i, opt := range q.Options {
			options[i] = ReviewOption{
				ID:         opt.ID,
				Text:       opt.Text,
				IsCorrect:  opt.IsCorrect,
				IsSelected: selected != "" && selected == opt.ID,
			}
		}

		review.Questions = append(review.Questions, ReviewQuestion{
			QuestionID:  q.ID,
			Text:        q.Text,
			Options:     options,
			UserAnswer:  selected,
			Answered:    selected != "",
			Correct:     correctID,
			IsCorrect:   selected != "" && selected == correctID,
			Explanation: q.Explanation,
		})
	}

	return review, nil
}

// GetHistory retrieves a student's graded attempts, newest first.
func (s *AttemptService) GetHistory(ctx context.Context, studentID uuid.UUID, limit int) ([]repository.AttemptHistoryRow, error) {
	return s.attemptRepo.ListHistoryByStudent(ctx, studentID, limit)
}

// publishMonitorEvent pushes a submission notification onto the exam's
// monitor channel. Best-effort: monitoring must never fail a submission.
func (s *AttemptService) publishMonitorEvent(ctx context.Context, event *MonitorEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode monitor event")
		return
	}
	channel := config.CacheKey.ExamMonitorChannel(event.ExamID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to publish monitor event")
	}
}
