package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/assessment-backend/internal/model"
)

// ResultRepository handles result persistence. Results are insert-only.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

const resultColumns = `id, user_id, test_id, answers, score, total_questions, correct_answers, time_spent, is_passed, completed_at`

// Create inserts a result and fills in its ID.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, test_id, answers, score, total_questions, correct_answers, time_spent, is_passed, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		res.UserID, res.TestID, answers, res.Score, res.TotalQuestions, res.CorrectAnswers, res.TimeSpent, res.IsPassed, res.CompletedAt,
	).Scan(&res.ID)
}

// GetByID retrieves a result. Returns pgx.ErrNoRows when it does not exist.
func (r *ResultRepository) GetByID(ctx context.Context, id int64) (*model.Result, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resultColumns+` FROM results WHERE id = $1`, id)
	return scanResult(row)
}

// ListByUser returns up to limit results of a user, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE user_id = $1
		 ORDER BY completed_at DESC, id DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.Result{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

func scanResult(row pgx.Row) (*model.Result, error) {
	var (
		res     model.Result
		answers []byte
	)
	if err := row.Scan(&res.ID, &res.UserID, &res.TestID, &answers, &res.Score, &res.TotalQuestions,
		&res.CorrectAnswers, &res.TimeSpent, &res.IsPassed, &res.CompletedAt); err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &res.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of result %d: %w", res.ID, err)
		}
	}
	return &res, nil
}
