package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/assessment-backend/internal/model"
)

// TestRepository handles read access to authored tests.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

const testColumns = `id, title, category, difficulty, questions, passing_score, is_active, created_at`

// GetByID retrieves a test. Returns pgx.ErrNoRows when it does not exist.
func (r *TestRepository) GetByID(ctx context.Context, id int64) (*model.Test, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+testColumns+` FROM tests WHERE id = $1`, id)
	return scanTest(row)
}

// ListByIDs bulk-loads tests. Missing ids are simply absent from the result.
func (r *TestRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Test, error) {
	if len(ids) == 0 {
		return []model.Test{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+testColumns+` FROM tests WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tests := []model.Test{}
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}

func scanTest(row pgx.Row) (*model.Test, error) {
	var (
		t         model.Test
		questions []byte
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Category, &t.Difficulty, &questions, &t.PassingScore, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &t.Questions); err != nil {
			return nil, fmt.Errorf("decode questions of test %d: %w", t.ID, err)
		}
	}
	return &t, nil
}
