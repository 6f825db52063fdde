package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/assessment-backend/internal/model"
)

// AttemptStatsRepository reads the per-test aggregates maintained by the attempt-stats worker.
type AttemptStatsRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptStatsRepository creates a new AttemptStatsRepository.
func NewAttemptStatsRepository(pool *pgxpool.Pool) *AttemptStatsRepository {
	return &AttemptStatsRepository{pool: pool}
}

// GetByTest retrieves the aggregate for a test. Returns pgx.ErrNoRows when no attempt was recorded.
func (r *AttemptStatsRepository) GetByTest(ctx context.Context, testID int64) (*model.TestAttemptStats, error) {
	s := &model.TestAttemptStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT test_id, attempts, passed, total_score, total_time_spent, updated_at
		 FROM test_attempt_stats WHERE test_id = $1`, testID,
	).Scan(&s.TestID, &s.Attempts, &s.Passed, &s.TotalScore, &s.TotalTimeSpent, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

const upsertAttemptStats = `
	INSERT INTO test_attempt_stats AS s (test_id, attempts, passed, total_score, total_time_spent, updated_at)
	SELECT u.test_id, u.attempts, u.passed, u.total_score, u.total_time_spent, NOW()
	FROM UNNEST(
		$1::bigint[],
		$2::int[],
		$3::int[],
		$4::bigint[],
		$5::bigint[]
	) AS u (test_id, attempts, passed, total_score, total_time_spent)
	ON CONFLICT (test_id) DO UPDATE
	SET attempts         = s.attempts + EXCLUDED.attempts,
	    passed           = s.passed + EXCLUDED.passed,
	    total_score      = s.total_score + EXCLUDED.total_score,
	    total_time_spent = s.total_time_spent + EXCLUDED.total_time_spent,
	    updated_at       = EXCLUDED.updated_at
`

// ApplyDeltas adds every delta in one statement. Deltas must name distinct tests.
func (r *AttemptStatsRepository) ApplyDeltas(ctx context.Context, deltas []model.AttemptDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	n := len(deltas)
	testIDs := make([]int64, 0, n)
	attempts := make([]int, 0, n)
	passed := make([]int, 0, n)
	scores := make([]int64, 0, n)
	times := make([]int64, 0, n)
	for _, d := range deltas {
		testIDs = append(testIDs, d.TestID)
		attempts = append(attempts, d.Attempts)
		passed = append(passed, d.Passed)
		scores = append(scores, d.Score)
		times = append(times, d.TimeSpent)
	}

	_, err := r.pool.Exec(ctx, upsertAttemptStats, testIDs, attempts, passed, scores, times)
	return err
}

// ApplyDelta adds a single delta.
func (r *AttemptStatsRepository) ApplyDelta(ctx context.Context, d model.AttemptDelta) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO test_attempt_stats AS s (test_id, attempts, passed, total_score, total_time_spent, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (test_id) DO UPDATE
		 SET attempts         = s.attempts + EXCLUDED.attempts,
		     passed           = s.passed + EXCLUDED.passed,
		     total_score      = s.total_score + EXCLUDED.total_score,
		     total_time_spent = s.total_time_spent + EXCLUDED.total_time_spent,
		     updated_at       = NOW()`,
		d.TestID, d.Attempts, d.Passed, d.Score, d.TimeSpent,
	)
	return err
}
