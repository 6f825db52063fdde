package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/assessment-backend/internal/model"
)

// QuestionRepository handles read access to questions.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByIDs bulk-loads questions in a single query. Missing ids are absent from the result.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Question, error) {
	if len(ids) == 0 {
		return []model.Question{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, content, options, explanation, created_at
		 FROM questions WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var (
			q       model.Question
			content []byte
			options []byte
		)
		if err := rows.Scan(&q.ID, &content, &options, &q.Explanation, &q.CreatedAt); err != nil {
			return nil, err
		}
		q.Content = content
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return nil, fmt.Errorf("decode options of question %d: %w", q.ID, err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
