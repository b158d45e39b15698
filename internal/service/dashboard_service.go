package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/examhub/examhub-backend/internal/repository"
)

// DashboardService assembles the role-specific dashboard payloads.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
	attemptRepo   *repository.AttemptRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository, attemptRepo *repository.AttemptRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo, attemptRepo: attemptRepo}
}

// AdminDashboard is the platform-wide overview.
type AdminDashboard struct {
	Counts         *repository.PlatformCounts `json:"counts"`
	RecentActivity []repository.ActivityRow   `json:"recent_activity"`
}

// GetAdminDashboard returns platform counts and the latest graded
// submissions across all exams.
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	counts, err := s.dashboardRepo.GetPlatformCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("platform counts: %w", err)
	}
	activity, err := s.dashboardRepo.ListRecentActivity(ctx, nil, 10)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return &AdminDashboard{Counts: counts, RecentActivity: activity}, nil
}

// TeacherDashboard is the overview of one teacher's own content.
type TeacherDashboard struct {
	Counts         *repository.TeacherCounts `json:"counts"`
	RecentActivity []repository.ActivityRow  `json:"recent_activity"`
}

// GetTeacherDashboard returns aggregates scoped to exams the teacher owns.
func (s *DashboardService) GetTeacherDashboard(ctx context.Context, teacherID uuid.UUID) (*TeacherDashboard, error) {
	counts, err := s.dashboardRepo.GetTeacherCounts(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher counts: %w", err)
	}
	activity, err := s.dashboardRepo.ListRecentActivity(ctx, &teacherID, 10)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return &TeacherDashboard{Counts: counts, RecentActivity: activity}, nil
}

// StudentDashboard is one student's own progress overview.
type StudentDashboard struct {
	Counts   *repository.StudentCounts      `json:"counts"`
	Attempts []repository.AttemptHistoryRow `json:"attempts"`
}

// GetStudentDashboard returns the student's aggregates and recent attempts.
func (s *DashboardService) GetStudentDashboard(ctx context.Context, studentID uuid.UUID) (*StudentDashboard, error) {
	counts, err := s.dashboardRepo.GetStudentCounts(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("student counts: %w", err)
	}
	attempts, err := s.attemptRepo.ListHistoryByStudent(ctx, studentID, 10)
	if err != nil {
		return nil, fmt.Errorf("attempt history: %w", err)
	}
	return &StudentDashboard{Counts: counts, Attempts: attempts}, nil
}
