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

// PortalHandler handles the student exam-taking endpoints.
type PortalHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(examService *service.ExamService, attemptService *service.AttemptService) *PortalHandler {
	return &PortalHandler{examService: examService, attemptService: attemptService}
}

// ListExams godoc
// GET /api/v1/exams
// Returns the exams currently open to the student, with their own attempt
// usage and latest outcome overlaid.
func (h *PortalHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetPaper godoc
// GET /api/v1/exams/:exam_id/paper
// Returns the redacted exam paper: questions and options, never correctness
// flags or explanations.
func (h *PortalHandler) GetPaper(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	paper, err := h.examService.GetForTaking(c.Request.Context(), examID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrExamNotAvailable):
			response.Fail(c, http.StatusForbidden, response.ErrExamNotAvailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": paper})
}

// Submit godoc
// POST /api/v1/exams/:exam_id/submit
// Grades the submitted answers and returns the outcome summary. An empty
// answer set is valid and scores 0%.
func (h *PortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	summary, err := h.attemptService.Submit(c.Request.Context(), examID, claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrExamNotAvailable):
			response.Fail(c, http.StatusForbidden, response.ErrExamNotAvailable)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
		case errors.Is(err, repository.ErrMaxAttemptsExceeded):
			response.Fail(c, http.StatusForbidden, response.ErrMaxAttemptsExceeded)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": summary})
}

// Review godoc
// GET /api/v1/exams/:exam_id/review
// Returns the full breakdown of the student's latest completed attempt,
// answer key and explanations revealed. Only exists after a submission.
func (h *PortalHandler) Review(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	review, err := h.attemptService.GetReview(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSubmission):
			response.Fail(c, http.StatusNotFound, response.ErrNoSubmission)
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"review": review})
}

// History godoc
// GET /api/v1/exams/history?limit=50
// Returns the student's graded attempts, newest first.
func (h *PortalHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	limit := queryInt(c, "limit", 50)
	history, err := h.attemptService.GetHistory(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": history})
}
