package worker

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

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// AttemptStatsStore applies aggregate increments to per-test attempt stats.
type AttemptStatsStore interface {
	ApplyDeltas(ctx context.Context, deltas []model.AttemptDelta) error
	ApplyDelta(ctx context.Context, d model.AttemptDelta) error
}

// AttemptStatsWorker folds graded-result events into test_attempt_stats.
type AttemptStatsWorker struct {
	store        AttemptStatsStore
	rdb          *redis.Client
	log          zerolog.Logger
	pop          func(ctx context.Context) ([]string, error)
	batchTimeout time.Duration
}

func NewAttemptStatsWorker(store AttemptStatsStore, rdb *redis.Client, log zerolog.Logger) *AttemptStatsWorker {
	w := &AttemptStatsWorker{
		store:        store,
		rdb:          rdb,
		log:          log.With().Str("component", "attempt_stats_worker").Logger(),
		batchTimeout: StatsBatchTimeout,
	}
	w.pop = func(ctx context.Context) ([]string, error) {
		return w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.GradedResultsQueue).Result()
	}
	return w
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AttemptStatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptStatsWorker started")

	batch := make([]model.ResultGradedEvent, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		// Once ctx is done the pending batch is left to the shutdown flush below.
		if len(batch) > 0 && ctx.Err() == nil &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= w.batchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.WithoutCancel(ctx), batch)
			return

		default:
			item, err := w.pop(ctx)
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev model.ResultGradedEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, ev)
		}
	}
}

// aggregate collapses a batch into one delta per test, in first-seen order.
func aggregate(batch []model.ResultGradedEvent) []model.AttemptDelta {
	index := make(map[int64]int, len(batch))
	var deltas []model.AttemptDelta

	for _, ev := range batch {
		i, ok := index[ev.TestID]
		if !ok {
			i = len(deltas)
			index[ev.TestID] = i
			deltas = append(deltas, model.AttemptDelta{TestID: ev.TestID})
		}
		d := &deltas[i]
		d.Attempts++
		if ev.IsPassed {
			d.Passed++
		}
		d.Score += int64(ev.Score)
		d.TimeSpent += int64(ev.TimeSpent)
	}
	return deltas
}

// ----------------------------------------------------------------
// Batch upsert with per-test fallback
// ----------------------------------------------------------------

// flushSafe applies the batch and returns the events that could not be
// applied; those are pushed back onto the queue.
func (w *AttemptStatsWorker) flushSafe(ctx context.Context, batch []model.ResultGradedEvent) []model.ResultGradedEvent {
	if len(batch) == 0 {
		return nil
	}

	deltas := aggregate(batch)
	err := w.store.ApplyDeltas(ctx, deltas)
	if err == nil {
		w.log.Debug().Int("events", len(batch)).Int("tests", len(deltas)).Msg("Attempt stats flushed")
		return nil
	}
	w.log.Warn().Err(err).Msg("bulk stats upsert failed, using fallback")

	failedTests := make(map[int64]struct{})
	for _, d := range deltas {
		if err := w.store.ApplyDelta(ctx, d); err != nil {
			w.log.Error().Err(err).Int64("test_id", d.TestID).Msg("ApplyDelta failed, requeueing")
			failedTests[d.TestID] = struct{}{}
		}
	}

	var failed []model.ResultGradedEvent
	for _, ev := range batch {
		if _, ok := failedTests[ev.TestID]; ok {
			failed = append(failed, ev)
		}
	}
	w.requeue(ctx, failed)
	return failed
}

func (w *AttemptStatsWorker) requeue(ctx context.Context, events []model.ResultGradedEvent) {
	if len(events) == 0 || w.rdb == nil {
		return
	}

	pipe := w.rdb.Pipeline()
	for _, ev := range events {
		raw, _ := json.Marshal(ev)
		pipe.RPush(ctx, config.WorkerKey.GradedResultsQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("events", len(events)).Msg("Requeue failed, events dropped")
	}
}

// ResultQueue hands graded results to the AttemptStatsWorker through Redis.
type ResultQueue struct {
	rdb *redis.Client
}

func NewResultQueue(rdb *redis.Client) *ResultQueue {
	return &ResultQueue{rdb: rdb}
}

// ResultGraded enqueues the graded-result event for res.
func (q *ResultQueue) ResultGraded(ctx context.Context, res *model.Result) error {
	raw, err := json.Marshal(model.NewResultGradedEvent(res))
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.GradedResultsQueue, raw).Err()
}
