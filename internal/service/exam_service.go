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
	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/repository"
)

// Exam lifecycle errors.
var (
	ErrExamNotAvailable = errors.New("exam is not available")
	ErrExamHasAttempts  = errors.New("exam already has graded attempts")
	ErrUnknownQuestion  = errors.New("exam references a question that does not exist")
)

// paperCacheTTL bounds how long a redacted exam paper may live in Redis.
// Papers are re-warmed on every exam mutation, so the TTL only matters for
// exams edited directly in the database.
const paperCacheTTL = 6 * time.Hour

// ExamService handles exam assembly and delivery business logic.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	attemptRepo  *repository.AttemptRepository
	rdb          *redis.Client
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	rdb *redis.Client,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		rdb:          rdb,
	}
}

// Create assembles a new exam from bank questions. Every referenced question
// must exist; order in the request is the presentation order.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest, creatorID uuid.UUID) (*model.Exam, error) {
	if err := s.verifyQuestionsExist(ctx, req.QuestionIDs); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Title:            req.Title,
		Description:      req.Description,
		Instructions:     req.Instructions,
		TimeLimitMinutes: req.TimeLimitMinutes,
		PassingScore:     req.PassingScore,
		MaxAttempts:      req.MaxAttempts,
		IsActive:         req.IsActive == nil || *req.IsActive,
		AvailableFrom:    req.AvailableFrom,
		AvailableUntil:   req.AvailableUntil,
		CreatedByID:      creatorID,
	}

	if err := s.examRepo.Create(ctx, exam, req.QuestionIDs); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.warmPaperCache(ctx, exam)
	return exam, nil
}

// GetByID retrieves an exam's metadata.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// GetWithKey retrieves an exam with its full question set, answer key
// included. For exam managers only.
func (s *ExamService) GetWithKey(ctx context.Context, id uuid.UUID) (*model.Exam, *model.ExamView, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.questionRepo.ListByExam(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list exam questions: %w", err)
	}
	view := model.BuildExamView(exam, questions, true)
	return exam, &view, nil
}

// List retrieves exams matching the filter.
func (s *ExamService) List(ctx context.Context, f repository.ExamFilter) ([]model.Exam, error) {
	return s.examRepo.List(ctx, f)
}

// Update modifies an exam. Teachers may only modify their own exams; admins
// may modify any. Changing the question set of an exam that already has
// graded attempts is rejected so old results stay interpretable.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest, role model.Role, userID uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanManageContent(role, exam.CreatedByID, userID) {
		return nil, ErrNotContentOwner
	}

	if req.QuestionIDs != nil {
		hasAttempts, err := s.examRepo.HasAttempts(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check attempts: %w", err)
		}
		if hasAttempts {
			return nil, ErrExamHasAttempts
		}
		if err := s.verifyQuestionsExist(ctx, req.QuestionIDs); err != nil {
			return nil, err
		}
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.Instructions != nil {
		exam.Instructions = *req.Instructions
	}
	if req.TimeLimitMinutes != 0 {
		exam.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil {
		exam.MaxAttempts = *req.MaxAttempts
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
	if req.AvailableFrom != nil {
		exam.AvailableFrom = req.AvailableFrom
	}
	if req.AvailableUntil != nil {
		exam.AvailableUntil = req.AvailableUntil
	}

	if err := s.examRepo.Update(ctx, exam, req.QuestionIDs); err != nil {
		return nil, err
	}

	s.warmPaperCache(ctx, exam)
	return exam, nil
}

// Delete removes an exam. Exams with graded attempts cannot be deleted;
// deactivate them instead so grade history stays intact.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID, role model.Role, userID uuid.UUID) error {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !model.CanManageContent(role, exam.CreatedByID, userID) {
		return ErrNotContentOwner
	}

	hasAttempts, err := s.examRepo.HasAttempts(ctx, id)
	if err != nil {
		return fmt.Errorf("check attempts: %w", err)
	}
	if hasAttempts {
		return ErrExamHasAttempts
	}

	if err := s.examRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.rdb.Del(ctx, config.CacheKey.ExamPaperKey(id.String())).Err(); err != nil {
		log.Warn().Err(err).Str("exam_id", id.String()).Msg("failed to drop exam paper cache")
	}
	return nil
}

// StudentExam is an exam as listed for a student, overlaid with their own
// attempt state.
type StudentExam struct {
	model.Exam
	AttemptsUsed   int   `json:"attempts_used"`
	CanAttempt     bool  `json:"can_attempt"`
	LastPercentage *int  `json:"last_percentage,omitempty"`
	LastPassed     *bool `json:"last_passed,omitempty"`
}

// ListForStudent returns the exams currently open to a student: active,
// inside their availability window, with the student's attempt usage and
// latest outcome overlaid.
func (s *ExamService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]StudentExam, error) {
	exams, err := s.examRepo.List(ctx, repository.ExamFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	now := time.Now()
	var listing []StudentExam
	for i := range exams {
		exam := exams[i]
		if !exam.AvailableAt(now) {
			continue
		}

		used, err := s.attemptRepo.CountCompleted(ctx, exam.ID, studentID)
		if err != nil {
			return nil, fmt.Errorf("count attempts: %w", err)
		}

		entry := StudentExam{
			Exam:         exam,
			AttemptsUsed: used,
			CanAttempt:   exam.MaxAttempts == 0 || used < exam.MaxAttempts,
		}

		if used > 0 {
			_, result, err := s.attemptRepo.GetLatestCompleted(ctx, exam.ID, studentID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("get latest result: %w", err)
			}
			if result != nil {
				entry.LastPercentage = &result.Percentage
				entry.LastPassed = &result.Passed
			}
		}

		listing = append(listing, entry)
	}
	return listing, nil
}

// GetForTaking returns the redacted exam paper for a student about to take
// the exam. The payload comes from the Redis cache when warm; on a miss it
// is rebuilt from the database and re-cached. The returned view never
// contains correctness flags or explanations.
func (s *ExamService) GetForTaking(ctx context.Context, examID uuid.UUID) (*model.ExamView, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.AvailableAt(time.Now()) {
		return nil, ErrExamNotAvailable
	}

	paperKey := config.CacheKey.ExamPaperKey(examID.String())
	cached, err := s.rdb.Get(ctx, paperKey).Result()
	if err == nil {
		var view model.ExamView
		if err := json.Unmarshal([]byte(cached), &view); err == nil {
			return &view, nil
		}
		// Corrupt cache entry: fall through to the database rebuild.
		log.Warn().Str("exam_id", examID.String()).Msg("discarding unreadable exam paper cache entry")
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get cached paper: %w", err)
	}

	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list exam questions: %w", err)
	}
	view := model.BuildExamView(exam, questions, false)

	if raw, err := json.Marshal(view); err == nil {
		if err := s.rdb.Set(ctx, paperKey, raw, paperCacheTTL).Err(); err != nil {
			log.Warn().Err(err).Str("exam_id", examID.String()).Msg("failed to cache exam paper")
		}
	}

	return &view, nil
}

// GetResults returns the latest outcome per student for an exam, for the
// teacher/admin results view. Teachers may only see results of their own
// exams.
func (s *ExamService) GetResults(ctx context.Context, examID uuid.UUID, page, perPage int, role model.Role, userID uuid.UUID) ([]repository.ExamResultRow, int, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, 0, err
	}
	if !model.CanManageContent(role, exam.CreatedByID, userID) {
		return nil, 0, ErrNotContentOwner
	}
	return s.attemptRepo.ListByExam(ctx, examID, page, perPage)
}

// verifyQuestionsExist ensures every referenced question id is present in
// the bank before the exam transaction starts.
func (s *ExamService) verifyQuestionsExist(ctx context.Context, questionIDs []uuid.UUID) error {
	for _, qid := range questionIDs {
		if _, err := s.questionRepo.GetByID(ctx, qid); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownQuestion, qid)
			}
			return fmt.Errorf("verify question %s: %w", qid, err)
		}
	}
	return nil
}

// warmPaperCache rebuilds the redacted paper in Redis after an exam
// mutation. Best-effort: a cache failure never fails the mutation, the
// paper is rebuilt on the next cache miss.
func (s *ExamService) warmPaperCache(ctx context.Context, exam *model.Exam) {
	paperKey := config.CacheKey.ExamPaperKey(exam.ID.String())

	if !exam.IsActive {
		if err := s.rdb.Del(ctx, paperKey).Err(); err != nil {
			log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("failed to drop exam paper cache")
		}
		return
	}

	questions, err := s.questionRepo.ListByExam(ctx, exam.ID)
	if err != nil {
		log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("failed to load questions for paper cache")
		return
	}
	view := model.BuildExamView(exam, questions, false)
	raw, err := json.Marshal(view)
	if err != nil {
		log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("failed to encode exam paper")
		return
	}
	if err := s.rdb.Set(ctx, paperKey, raw, paperCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("failed to cache exam paper")
	}
}
