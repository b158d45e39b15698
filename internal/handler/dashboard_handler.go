package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhub/examhub-backend/internal/middleware"
	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/response"
	"github.com/examhub/examhub-backend/internal/service"
)

// DashboardHandler serves the role-specific dashboards.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// GET /api/v1/dashboard
// Returns the dashboard for the caller's role: platform-wide for admins,
// own-content aggregates for teachers, own-progress for students.
func (h *DashboardHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	ctx := c.Request.Context()

	switch claims.Role {
	case model.RoleAdmin:
		dashboard, err := h.dashboardService.GetAdminDashboard(ctx)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"role": claims.Role, "dashboard": dashboard})

	case model.RoleTeacher:
		dashboard, err := h.dashboardService.GetTeacherDashboard(ctx, claims.UserID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"role": claims.Role, "dashboard": dashboard})

	default:
		dashboard, err := h.dashboardService.GetStudentDashboard(ctx, claims.UserID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"role": claims.Role, "dashboard": dashboard})
	}
}
