package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examhub/examhub-backend/internal/model"
)

// DashboardRepository aggregates counts and recent activity for the
// role-specific dashboards.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// PlatformCounts is the admin dashboard aggregate.
type PlatformCounts struct {
	Users     int `json:"users"`
	Admins    int `json:"admins"`
	Teachers  int `json:"teachers"`
	Students  int `json:"students"`
	Questions int `json:"questions"`
	Exams     int `json:"exams"`
	Attempts  int `json:"attempts"`
}

// GetPlatformCounts returns platform-wide entity counts.
func (r *DashboardRepository) GetPlatformCounts(ctx context.Context) (*PlatformCounts, error) {
	c := &PlatformCounts{}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM users WHERE role = $1),
		   (SELECT COUNT(*) FROM users WHERE role = $2),
		   (SELECT COUNT(*) FROM users WHERE role = $3),
		   (SELECT COUNT(*) FROM questions),
		   (SELECT COUNT(*) FROM exams),
		   (SELECT COUNT(*) FROM attempts WHERE status = 'COMPLETED')`,
		model.RoleAdmin, model.RoleTeacher, model.RoleStudent,
	).Scan(&c.Users, &c.Admins, &c.Teachers, &c.Students, &c.Questions, &c.Exams, &c.Attempts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ActivityRow is one entry of the recent-activity feed.
type ActivityRow struct {
	StudentName string    `json:"student_name"`
	ExamTitle   string    `json:"exam_title"`
	Percentage  int       `json:"percentage"`
	Passed      bool      `json:"passed"`
	At          time.Time `json:"at"`
}

// ListRecentActivity retrieves the most recent graded submissions. When
// createdBy is non-nil the feed is scoped to exams owned by that user.
func (r *DashboardRepository) ListRecentActivity(ctx context.Context, createdBy *uuid.UUID, limit int) ([]ActivityRow, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT u.name, e.title, res.percentage, res.passed, res.created_at
	          FROM results res
	          JOIN users u ON u.id = res.student_id
	          JOIN exams e ON e.id = res.exam_id`
	args := []any{limit}
	if createdBy != nil {
		args = append(args, *createdBy)
		query += ` WHERE e.created_by = $2`
	}
	query += ` ORDER BY res.created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []ActivityRow
	for rows.Next() {
		var a ActivityRow
		if err := rows.Scan(&a.StudentName, &a.ExamTitle, &a.Percentage, &a.Passed, &a.At); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

// TeacherCounts is the teacher dashboard aggregate, scoped to owned content.
type TeacherCounts struct {
	Questions     int      `json:"questions"`
	Exams         int      `json:"exams"`
	Attempts      int      `json:"attempts"`
	AvgPercentage *float64 `json:"avg_percentage"`
}

// GetTeacherCounts returns content and result aggregates for one creator.
func (r *DashboardRepository) GetTeacherCounts(ctx context.Context, creatorID uuid.UUID) (*TeacherCounts, error) {
	c := &TeacherCounts{}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM questions WHERE created_by = $1),
		   (SELECT COUNT(*) FROM exams WHERE created_by = $1),
		   (SELECT COUNT(*) FROM attempts a JOIN exams e ON e.id = a.exam_id
		     WHERE e.created_by = $1 AND a.status = 'COMPLETED'),
		   (SELECT AVG(r.percentage) FROM results r JOIN exams e ON e.id = r.exam_id
		     WHERE e.created_by = $1)`,
		creatorID,
	).Scan(&c.Questions, &c.Exams, &c.Attempts, &c.AvgPercentage)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// StudentCounts is the student dashboard aggregate.
type StudentCounts struct {
	Attempts      int      `json:"attempts"`
	Passed        int      `json:"passed"`
	AvgPercentage *float64 `json:"avg_percentage"`
}

// GetStudentCounts returns attempt aggregates for one student.
func (r *DashboardRepository) GetStudentCounts(ctx context.Context, studentID uuid.UUID) (*StudentCounts, error) {
	c := &StudentCounts{}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM attempts WHERE student_id = $1 AND status = 'COMPLETED'),
		   (SELECT COUNT(*) FROM results WHERE student_id = $1 AND passed),
		   (SELECT AVG(percentage) FROM results WHERE student_id = $1)`,
		studentID,
	).Scan(&c.Attempts, &c.Passed, &c.AvgPercentage)
	if err != nil {
		return nil, err
	}
	return c, nil
}
