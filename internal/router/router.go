package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examhub/examhub-backend/internal/config"
	"github.com/examhub/examhub-backend/internal/handler"
	"github.com/examhub/examhub-backend/internal/middleware"
	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/response"
	"github.com/examhub/examhub-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Question  *handler.QuestionHandler
	Exam      *handler.ExamHandler
	Portal    *handler.PortalHandler
	Dashboard *handler.DashboardHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// CORS: restrict to the configured list, or allow all so dev works
	// without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (per IP per minute).
	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
	}

	// ─── 2. Authenticated Group (all roles) ────────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireAuth(authService),
		middleware.CheckSingleSession(authService),
	)
	{
		api.GET("/dashboard", handlers.Dashboard.Get)

		// Exam portal. Open to every authenticated user: attempts belong to
		// the caller regardless of role, so there is no role gate here.
		api.GET("/exams", handlers.Portal.ListExams)
		api.GET("/exams/history", handlers.Portal.History)
		api.GET("/exams/:exam_id/paper", handlers.Portal.GetPaper)
		api.POST("/exams/:exam_id/submit", handlers.Portal.Submit)
		api.GET("/exams/:exam_id/review", handlers.Portal.Review)
	}

	// ─── 3. WebSocket Group (WS Auth via ?token=) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireWSAuth(authService),
		middleware.RequireAnyPermission(model.PermissionManageExams, model.PermissionViewAnalytics),
	)
	{
		ws.GET("/exams/:exam_id/monitor", handlers.WS.MonitorExam)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAuth(authService))
	{
		// User management (admins only)
		adminAPI.GET("/users",
			middleware.RequirePermission(model.PermissionManageUsers),
			handlers.User.List,
		)
		adminAPI.PATCH("/users/:user_id/role",
			middleware.RequirePermission(model.PermissionManageUsers),
			handlers.User.UpdateRole,
		)
		adminAPI.DELETE("/users/:user_id",
			middleware.RequirePermission(model.PermissionManageUsers),
			handlers.User.Delete,
		)
		adminAPI.POST("/users/:user_id/reset-session",
			middleware.RequirePermission(model.PermissionManageUsers),
			handlers.User.ResetSession,
		)

		// Question bank (teachers and admins)
		adminAPI.GET("/questions",
			middleware.RequirePermission(model.PermissionManageQuestions),
			handlers.Question.List,
		)
		adminAPI.GET("/questions/categories",
			middleware.RequirePermission(model.PermissionManageQuestions),
			handlers.Question.ListCategories,
		)
		adminAPI.POST("/questions",
			middleware.RequirePermission(model.PermissionManageQuestions),
			handlers.Question.Create,
		)
		adminAPI.GET("/questions/:question_id",
			middleware.RequirePermission(model.PermissionManageQuestions),
			handlers.Question.Get,
		)
		adminAPI.PUT("/questions/:question_id",
			middleware.RequirePermission(model.PermissionManageQuestions),
			handlers.Question.Update,
		)
		adminAPI.DELETE("/questions/:question_id",
			middleware.RequirePermission(model.PermissionManageQuestions),
			handlers.Question.Delete,
		)

		// Exam management (teachers and admins)
		adminAPI.GET("/exams",
			middleware.RequirePermission(model.PermissionManageExams),
			handlers.Exam.List,
		)
		adminAPI.POST("/exams",
			middleware.RequirePermission(model.PermissionManageExams),
			handlers.Exam.Create,
		)
		adminAPI.GET("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionManageExams),
			handlers.Exam.Get,
		)
		adminAPI.PUT("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionManageExams),
			handlers.Exam.Update,
		)
		adminAPI.DELETE("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionManageExams),
			handlers.Exam.Delete,
		)
		adminAPI.GET("/exams/:exam_id/results",
			middleware.RequirePermission(model.PermissionViewAnalytics),
			handlers.Exam.Results,
		)
	}

	return router
}
