package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examhub/examhub-backend/internal/model"
)

// AttemptRepository handles attempt and result data access. The two rows
// that record one submission are always written in the same transaction.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// SubmitCompleted persists one scored submission: the COMPLETED attempt and
// its derived result, atomically. If either insert fails, neither row is
// kept.
//
// When maxAttempts > 0 the completed-attempt count is re-checked inside the
// transaction under a per-(exam, student) advisory lock, so two concurrent
// submissions cannot both pass a stale count. Returns
// ErrMaxAttemptsExceeded when the cap is already reached.
func (r *AttemptRepository) SubmitCompleted(ctx context.Context, attempt *model.Attempt, result *model.Result, maxAttempts int) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if maxAttempts > 0 {
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`,
			attempt.ExamID.String(), attempt.StudentID.String()); err != nil {
			return fmt.Errorf("acquire submit lock: %w", err)
		}

		var used int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM attempts
			 WHERE exam_id = $1 AND student_id = $2 AND status = 'COMPLETED'`,
			attempt.ExamID, attempt.StudentID,
		).Scan(&used); err != nil {
			return fmt.Errorf("count attempts: %w", err)
		}
		if used >= maxAttempts {
			return ErrMaxAttemptsExceeded
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO attempts (student_id, exam_id, start_time, end_time, answers, score, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		attempt.StudentID, attempt.ExamID, attempt.StartTime, attempt.EndTime,
		answers, attempt.Score, attempt.Status,
	).Scan(&attempt.ID, &attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	result.AttemptID = attempt.ID
	err = tx.QueryRow(ctx,
		`INSERT INTO results (attempt_id, student_id, exam_id, score, percentage, passed, feedback)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		result.AttemptID, result.StudentID, result.ExamID, result.Score,
		result.Percentage, result.Passed, result.Feedback,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	return tx.Commit(ctx)
}

// GetLatestCompleted retrieves a student's most recent completed attempt for
// an exam with its result. Tie-break: created_at descending.
func (r *AttemptRepository) GetLatestCompleted(ctx context.Context, examID, studentID uuid.UUID) (*model.Attempt, *model.Result, error) {
	a := &model.Attempt{}
	res := &model.Result{}
	var answersRaw []byte

	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.student_id, a.exam_id, a.start_time, a.end_time, a.answers,
		        a.score, a.status, a.created_at,
		        r.id, r.attempt_id, r.student_id, r.exam_id, r.score, r.percentage,
		        r.passed, r.feedback, r.created_at
		 FROM attempts a
		 JOIN results r ON r.attempt_id = a.id
		 WHERE a.exam_id = $1 AND a.student_id = $2 AND a.status = 'COMPLETED'
		 ORDER BY a.created_at DESC
		 LIMIT 1`, examID, studentID,
	).Scan(
		&a.ID, &a.StudentID, &a.ExamID, &a.StartTime, &a.EndTime, &answersRaw,
		&a.Score, &a.Status, &a.CreatedAt,
		&res.ID, &res.AttemptID, &res.StudentID, &res.ExamID, &res.Score,
		&res.Percentage, &res.Passed, &res.Feedback, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if err := json.Unmarshal(answersRaw, &a.Answers); err != nil {
		return nil, nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return a, res, nil
}

// CountCompleted returns the number of completed attempts for (exam, student).
func (r *AttemptRepository) CountCompleted(ctx context.Context, examID, studentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND status = 'COMPLETED'`,
		examID, studentID,
	).Scan(&count)
	return count, err
}

// AttemptHistoryRow is one entry of a student's attempt history.
type AttemptHistoryRow struct {
	AttemptID   uuid.UUID  `json:"attempt_id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	ExamTitle   string     `json:"exam_title"`
	Percentage  int        `json:"percentage"`
	Passed      bool       `json:"passed"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

// ListHistoryByStudent retrieves a student's graded attempts, newest first.
func (r *AttemptRepository) ListHistoryByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]AttemptHistoryRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.exam_id, e.title, r.percentage, r.passed, a.end_time
		 FROM attempts a
		 JOIN results r ON r.attempt_id = a.id
		 JOIN exams e ON e.id = a.exam_id
		 WHERE a.student_id = $1 AND a.status = 'COMPLETED'
		 ORDER BY a.created_at DESC
		 LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []AttemptHistoryRow
	for rows.Next() {
		var h AttemptHistoryRow
		if err := rows.Scan(&h.AttemptID, &h.ExamID, &h.ExamTitle, &h.Percentage, &h.Passed, &h.SubmittedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ExamResultRow is one student's outcome in a per-exam results listing.
type ExamResultRow struct {
	StudentID   uuid.UUID  `json:"student_id"`
	StudentName string     `json:"student_name"`
	Email       string     `json:"email"`
	Percentage  int        `json:"percentage"`
	Passed      bool       `json:"passed"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// ListByExam retrieves the latest result per student for an exam, with
// pagination. Used by the teacher/admin results view.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]ExamResultRow, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT a.student_id)
		 FROM attempts a WHERE a.exam_id = $1 AND a.status = 'COMPLETED'`,
		examID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (a.student_id)
		        a.student_id, u.name, u.email, r.percentage, r.passed, a.start_time, a.end_time
		 FROM attempts a
		 JOIN results r ON r.attempt_id = a.id
		 JOIN users u ON u.id = a.student_id
		 WHERE a.exam_id = $1 AND a.status = 'COMPLETED'
		 ORDER BY a.student_id, a.created_at DESC
		 LIMIT $2 OFFSET $3`, examID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []ExamResultRow
	for rows.Next() {
		var row ExamResultRow
		if err := rows.Scan(&row.StudentID, &row.StudentName, &row.Email,
			&row.Percentage, &row.Passed, &row.StartTime, &row.EndTime); err != nil {
			return nil, 0, err
		}
		results = append(results, row)
	}
	return results, total, rows.Err()
}
