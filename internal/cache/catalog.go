package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/config"
	"github.com/stemsi/assessment-backend/internal/model"
)

// TestSource loads a test from the system of record.
type TestSource interface {
	GetByID(ctx context.Context, id int64) (*model.Test, error)
}

// QuestionSource bulk-loads questions from the system of record.
type QuestionSource interface {
	ListByIDs(ctx context.Context, ids []int64) ([]model.Question, error)
}

// Catalog is a read-through Redis cache over tests and questions. Entries
// expire after ttl so edits by the authoring side surface without a flush.
// Any Redis failure degrades to a direct read.
type Catalog struct {
	tests     TestSource
	questions QuestionSource
	rdb       *redis.Client
	ttl       time.Duration
	log       zerolog.Logger
}

// NewCatalog creates a new Catalog.
func NewCatalog(tests TestSource, questions QuestionSource, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Catalog {
	return &Catalog{
		tests:     tests,
		questions: questions,
		rdb:       rdb,
		ttl:       ttl,
		log:       log.With().Str("component", "catalog_cache").Logger(),
	}
}

// GetTest returns a test, from cache when possible. Errors from the source
// (including pgx.ErrNoRows) are returned unchanged. Misses are not cached.
func (c *Catalog) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	key := config.CacheKey.TestKey(id)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var t model.Test
		if jsonErr := json.Unmarshal(data, &t); jsonErr == nil {
			return &t, nil
		}
		c.log.Warn().Str("key", key).Msg("Corrupt cache entry, reloading")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to database")
	}

	t, err := c.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(t); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return t, nil
}

// ListQuestions returns the questions for ids that exist, cached entries
// first resolved with one MGET and the rest loaded in one bulk query.
func (c *Catalog) ListQuestions(ctx context.Context, ids []int64) ([]model.Question, error) {
	if len(ids) == 0 {
		return []model.Question{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = config.CacheKey.QuestionKey(id)
	}

	found := make(map[int64]model.Question, len(ids))
	var missing []int64

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn().Err(err).Int("count", len(ids)).Msg("Cache read failed, falling back to database")
		missing = ids
	} else {
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var q model.Question
			if err := json.Unmarshal([]byte(s), &q); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			found[ids[i]] = q
		}
	}

	if len(missing) > 0 {
		loaded, err := c.questions.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}

		pipe := c.rdb.Pipeline()
		for _, q := range loaded {
			found[q.ID] = q
			if raw, err := json.Marshal(q); err == nil {
				pipe.Set(ctx, config.CacheKey.QuestionKey(q.ID), raw, c.ttl)
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			c.log.Warn().Err(err).Int("count", len(loaded)).Msg("Cache write failed")
		}
	}

	questions := make([]model.Question, 0, len(found))
	for _, id := range ids {
		if q, ok := found[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}
