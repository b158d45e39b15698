package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhub/examhub-backend/internal/middleware"
	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/repository"
	"github.com/examhub/examhub-backend/internal/response"
	"github.com/examhub/examhub-backend/internal/service"
	"github.com/examhub/examhub-backend/internal/validator"
)

// QuestionHandler handles question bank management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Create godoc
// POST /api/v1/admin/questions
// Adds a question to the bank. Exactly one option must be marked correct.
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		if isOptionError(err) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"options": err.Error()})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// List godoc
// GET /api/v1/admin/questions?category=...&difficulty=...&mine=true
// Returns bank questions with answer keys, optionally filtered.
func (h *QuestionHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	filter := repository.QuestionFilter{
		Category:   c.Query("category"),
		Difficulty: model.Difficulty(c.Query("difficulty")),
	}
	if c.Query("mine") == "true" {
		creatorID := claims.UserID
		filter.CreatedBy = &creatorID
	}

	questions, err := h.questionService.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ListCategories godoc
// GET /api/v1/admin/questions/categories
// Returns the distinct categories present in the bank.
func (h *QuestionHandler) ListCategories(c *gin.Context) {
	categories, err := h.questionService.ListCategories(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// Get godoc
// GET /api/v1/admin/questions/:question_id
// Returns one question with its answer key.
func (h *QuestionHandler) Get(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), questionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Update godoc
// PUT /api/v1/admin/questions/:question_id
// Replaces a question's content. Rejected once the question has graded
// attempts, and teachers may only edit their own questions.
func (h *QuestionHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), questionID, &req, claims.Role, claims.UserID)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/admin/questions/:question_id
// Removes a question, with the same guards as Update.
func (h *QuestionHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), questionID, claims.Role, claims.UserID); err != nil {
		h.writeMutationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

func (h *QuestionHandler) writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotContentOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotContentOwner)
	case errors.Is(err, service.ErrQuestionInUse):
		response.Fail(c, http.StatusConflict, response.ErrQuestionInUse)
	case isOptionError(err):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"options": err.Error()})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func isOptionError(err error) bool {
	return errors.Is(err, service.ErrOptionKey) || errors.Is(err, service.ErrDuplicateOptionID)
}
