package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/cache"
	"github.com/stemsi/assessment-backend/internal/config"
	"github.com/stemsi/assessment-backend/internal/database"
	"github.com/stemsi/assessment-backend/internal/handler"
	"github.com/stemsi/assessment-backend/internal/logger"
	"github.com/stemsi/assessment-backend/internal/messaging"
	"github.com/stemsi/assessment-backend/internal/repository"
	"github.com/stemsi/assessment-backend/internal/router"
	"github.com/stemsi/assessment-backend/internal/service"
	"github.com/stemsi/assessment-backend/internal/validator"
	"github.com/stemsi/assessment-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting assessment backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to RabbitMQ (optional) ────────────────────────────────
	notifiers := service.Notifiers{worker.NewResultQueue(rdb)}
	if cfg.RabbitMQURL != "" {
		publisher, err := messaging.NewPublisher(cfg.RabbitMQURL, config.WorkerKey.ResultGradedRoutingKey)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, result events will not be published")
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
			log.Info().Str("queue", config.WorkerKey.ResultGradedRoutingKey).Msg("RabbitMQ publisher ready")
		}
	} else {
		log.Info().Msg("RABBITMQ_URL not set, result events stay internal")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	attemptStatsRepo := repository.NewAttemptStatsRepository(pool)

	catalog := cache.NewCatalog(testRepo, questionRepo, rdb, cfg.CatalogCacheTTL, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	gradingService := service.NewGradingService(catalog, resultRepo, notifiers, cfg.DefaultPassingScore, log)
	statsService := service.NewStatsService(
		userRepo,
		resultRepo,
		testRepo,
		questionRepo,
		attemptStatsRepo,
		cfg.StatsHistoryLimit,
		cfg.StatsRecentLimit,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Result: handler.NewResultHandler(gradingService, log),
		Stats:  handler.NewStatsHandler(statsService, log),
		WS:     handler.NewWSHandler(gradingService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	statsWorker := worker.NewAttemptStatsWorker(attemptStatsRepo, rdb, log)
	workerDone := make(chan struct{})
	go func() {
		statsWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	health := database.NewHealth(map[string]database.Pinger{
		"postgres": pool,
		"redis":    database.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	})
	r := router.SetupRouter(authService, handlers, health, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the stats worker; it flushes its pending batch before returning.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Stats worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
