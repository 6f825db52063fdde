package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/config"
)

// NewRedisClient connects the client behind the catalog cache and the
// graded-results queue.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	rlog := log.With().Str("component", "redis").Logger()
	ping := PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	if err := waitReady(ctx, ping, startupAttempts, startupBackoff, rlog); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	rlog.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("Redis connected")
	return rdb, nil
}
