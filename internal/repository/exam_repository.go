package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examhub/examhub-backend/internal/model"
)

// ExamRepository handles exam data access, including the ordered question
// references.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// ExamFilter narrows List results.
type ExamFilter struct {
	ActiveOnly bool
	CreatedBy  *uuid.UUID
}

const examColumns = `e.id, e.title, e.description, e.instructions, e.time_limit_minutes,
	e.passing_score, e.max_attempts, e.is_active, e.available_from, e.available_until,
	(SELECT COUNT(*) FROM exam_questions eq WHERE eq.exam_id = e.id),
	e.created_by, e.created_at, e.updated_at`

// Create inserts an exam and its ordered question references in one
// transaction. Order numbers are assigned 1-based from the given sequence.
func (r *ExamRepository) Create(ctx context.Context, exam *model.Exam, questionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exams (title, description, instructions, time_limit_minutes,
		                    passing_score, max_attempts, is_active, available_from,
		                    available_until, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		exam.Title, nullableText(exam.Description), nullableText(exam.Instructions),
		exam.TimeLimitMinutes, exam.PassingScore, exam.MaxAttempts, exam.IsActive,
		exam.AvailableFrom, exam.AvailableUntil, exam.CreatedByID,
	).Scan(&exam.ID, &exam.CreatedAt, &exam.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}

	if err := insertQuestionRefs(ctx, tx, exam.ID, questionIDs); err != nil {
		return err
	}
	exam.QuestionCount = len(questionIDs)

	return tx.Commit(ctx)
}

// GetByID retrieves an exam by id.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.id = $1`, id)
	return scanExam(row)
}

// Update replaces an exam's metadata and, when questionIDs is non-nil, its
// question references.
func (r *ExamRepository) Update(ctx context.Context, exam *model.Exam, questionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, instructions = $3, time_limit_minutes = $4,
		     passing_score = $5, max_attempts = $6, is_active = $7,
		     available_from = $8, available_until = $9, updated_at = NOW()
		 WHERE id = $10`,
		exam.Title, nullableText(exam.Description), nullableText(exam.Instructions),
		exam.TimeLimitMinutes, exam.PassingScore, exam.MaxAttempts, exam.IsActive,
		exam.AvailableFrom, exam.AvailableUntil, exam.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if questionIDs != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM exam_questions WHERE exam_id = $1`, exam.ID); err != nil {
			return fmt.Errorf("clear question refs: %w", err)
		}
		if err := insertQuestionRefs(ctx, tx, exam.ID, questionIDs); err != nil {
			return err
		}
		exam.QuestionCount = len(questionIDs)
	}

	return tx.Commit(ctx)
}

// Delete removes an exam and, via FK cascade, its question references.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves exams matching the filter, newest first.
func (r *ExamRepository) List(ctx context.Context, f ExamFilter) ([]model.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams e WHERE 1=1`
	var args []any

	if f.ActiveOnly {
		query += " AND e.is_active = TRUE"
	}
	if f.CreatedBy != nil {
		args = append(args, *f.CreatedBy)
		query += fmt.Sprintf(" AND e.created_by = $%d", len(args))
	}

	query += " ORDER BY e.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *exam)
	}
	return exams, rows.Err()
}

// HasAttempts reports whether any completed attempt exists for the exam.
func (r *ExamRepository) HasAttempts(ctx context.Context, examID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attempts WHERE exam_id = $1 AND status = 'COMPLETED')`,
		examID,
	).Scan(&exists)
	return exists, err
}

func insertQuestionRefs(ctx context.Context, tx pgx.Tx, examID uuid.UUID, questionIDs []uuid.UUID) error {
	for i, qid := range questionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, order_num)
			 VALUES ($1, $2, $3)`,
			examID, qid, i+1); err != nil {
			return fmt.Errorf("insert question ref %s: %w", qid, err)
		}
	}
	return nil
}

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	var description, instructions *string
	err := row.Scan(
		&e.ID, &e.Title, &description, &instructions, &e.TimeLimitMinutes,
		&e.PassingScore, &e.MaxAttempts, &e.IsActive, &e.AvailableFrom,
		&e.AvailableUntil, &e.QuestionCount, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if description != nil {
		e.Description = *description
	}
	if instructions != nil {
		e.Instructions = *instructions
	}
	return e, nil
}
