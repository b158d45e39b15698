package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/repository"
)

// Question bank errors.
var (
	ErrNotContentOwner   = errors.New("content belongs to another user")
	ErrQuestionInUse     = errors.New("question has graded attempts")
	ErrOptionKey         = errors.New("exactly one option must be marked correct")
	ErrDuplicateOptionID = errors.New("option ids must be unique within a question")
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// validateOptions enforces the cross-field option invariants the binding tags
// cannot express: exactly one correct option and unique option ids.
func validateOptions(options []model.OptionRequest) error {
	seen := make(map[string]struct{}, len(options))
	correct := 0
	for _, opt := range options {
		if _, dup := seen[opt.ID]; dup {
			return ErrDuplicateOptionID
		}
		seen[opt.ID] = struct{}{}
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return ErrOptionKey
	}
	return nil
}

// Create adds a question to the bank.
func (s *QuestionService) Create(ctx context.Context, req *model.QuestionRequest, creatorID uuid.UUID) (*model.Question, error) {
	if err := validateOptions(req.Options); err != nil {
		return nil, err
	}

	question := &model.Question{
		Text:        req.Text,
		Options:     make([]model.Option, len(req.Options)),
		Explanation: req.Explanation,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		CreatedByID: creatorID,
	}
	for i, opt := range req.Options {
		question.Options[i] = model.Option{ID: opt.ID, Text: opt.Text, IsCorrect: opt.IsCorrect}
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

// GetByID retrieves a question with its answer key. Callers gate access: the
// full record is for question managers only.
func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// List retrieves questions matching the filter.
func (s *QuestionService) List(ctx context.Context, f repository.QuestionFilter) ([]model.Question, error) {
	return s.questionRepo.List(ctx, f)
}

// ListCategories retrieves the distinct categories in the bank.
func (s *QuestionService) ListCategories(ctx context.Context) ([]string, error) {
	return s.questionRepo.ListCategories(ctx)
}

// Update replaces a question's content. Teachers may only edit their own
// questions; admins may edit any. Questions that already have graded
// attempts are append-only, since editing them would retroactively change
// what historical results were graded against.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.QuestionRequest, role model.Role, userID uuid.UUID) (*model.Question, error) {
	if err := validateOptions(req.Options); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanManageContent(role, question.CreatedByID, userID) {
		return nil, ErrNotContentOwner
	}

	inUse, err := s.questionRepo.HasGradedAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check graded attempts: %w", err)
	}
	if inUse {
		return nil, ErrQuestionInUse
	}

	question.Text = req.Text
	question.Options = make([]model.Option, len(req.Options))
	for i, opt := range req.Options {
		question.Options[i] = model.Option{ID: opt.ID, Text: opt.Text, IsCorrect: opt.IsCorrect}
	}
	question.Explanation = req.Explanation
	question.Category = req.Category
	question.Difficulty = req.Difficulty

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// Delete removes a question, with the same ownership and graded-attempt
// guards as Update.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID, role model.Role, userID uuid.UUID) error {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !model.CanManageContent(role, question.CreatedByID, userID) {
		return ErrNotContentOwner
	}

	inUse, err := s.questionRepo.HasGradedAttempts(ctx, id)
	if err != nil {
		return fmt.Errorf("check graded attempts: %w", err)
	}
	if inUse {
		return ErrQuestionInUse
	}

	return s.questionRepo.Delete(ctx, id)
}
