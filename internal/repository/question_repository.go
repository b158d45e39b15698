package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examhub/examhub-backend/internal/model"
)

// QuestionRepository handles question bank data access. Options are stored
// as a JSONB array including the correctness flags; redaction happens in
// the view layer, never in SQL.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// QuestionFilter narrows List results.
type QuestionFilter struct {
	Category   string
	Difficulty model.Difficulty
	CreatedBy  *uuid.UUID
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (text, options, explanation, category, difficulty, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		q.Text, options, nullableText(q.Explanation), q.Category, q.Difficulty, q.CreatedByID,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a question by id.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, text, options, explanation, category, difficulty, created_by, created_at, updated_at
		 FROM questions WHERE id = $1`, id)
	return scanQuestion(row)
}

// Update replaces a question's content.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET text = $1, options = $2, explanation = $3, category = $4, difficulty = $5, updated_at = NOW()
		 WHERE id = $6`,
		q.Text, options, nullableText(q.Explanation), q.Category, q.Difficulty, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves questions matching the filter, newest first.
func (r *QuestionRepository) List(ctx context.Context, f QuestionFilter) ([]model.Question, error) {
	query := `SELECT id, text, options, explanation, category, difficulty, created_by, created_at, updated_at
	          FROM questions WHERE 1=1`
	var args []any

	if f.Category != "" {
		args = append(args, "%"+f.Category+"%")
		query += fmt.Sprintf(" AND category ILIKE $%d", len(args))
	}
	if f.Difficulty != "" {
		args = append(args, f.Difficulty)
		query += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}
	if f.CreatedBy != nil {
		args = append(args, *f.CreatedBy)
		query += fmt.Sprintf(" AND created_by = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// ListCategories retrieves the distinct question categories, sorted.
func (r *QuestionRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT category FROM questions ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListByExam retrieves an exam's full question set (answer keys included),
// ordered by presentation order.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.text, q.options, q.explanation, q.category, q.difficulty,
		        q.created_by, q.created_at, q.updated_at, eq.order_num
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.order_num ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.ExamQuestion
	for rows.Next() {
		var eq model.ExamQuestion
		var optionsRaw []byte
		var explanation *string
		if err := rows.Scan(
			&eq.ID, &eq.Text, &optionsRaw, &explanation, &eq.Category, &eq.Difficulty,
			&eq.CreatedByID, &eq.CreatedAt, &eq.UpdatedAt, &eq.OrderNum,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsRaw, &eq.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		if explanation != nil {
			eq.Explanation = *explanation
		}
		questions = append(questions, eq)
	}
	return questions, rows.Err()
}

// HasGradedAttempts reports whether a question belongs to any exam that has
// completed attempts. Such questions are append-only: edits would
// retroactively change historical grading.
func (r *QuestionRepository) HasGradedAttempts(ctx context.Context, questionID uuid.UUID) (bool, error) {
	var inUse bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM exam_questions eq
		   JOIN attempts a ON a.exam_id = eq.exam_id AND a.status = 'COMPLETED'
		   WHERE eq.question_id = $1
		 )`, questionID,
	).Scan(&inUse)
	return inUse, err
}

// scanQuestion scans one question row including JSONB option decoding.
func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	var optionsRaw []byte
	var explanation *string
	err := row.Scan(
		&q.ID, &q.Text, &optionsRaw, &explanation, &q.Category, &q.Difficulty,
		&q.CreatedByID, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(optionsRaw, &q.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	if explanation != nil {
		q.Explanation = *explanation
	}
	return q, nil
}

// nullableText maps "" to NULL for optional text columns.
func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
