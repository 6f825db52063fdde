package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/assessment-backend/internal/config"
	"github.com/stemsi/assessment-backend/internal/handler"
	"github.com/stemsi/assessment-backend/internal/middleware"
	"github.com/stemsi/assessment-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Result *handler.ResultHandler
	Stats  *handler.StatsHandler
	WS     *handler.WSHandler
}

// HealthChecker reports dependency status for /health.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	health HealthChecker,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.GET("/health", func(c *gin.Context) {
		status, healthy := health.Check(c.Request.Context())
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Data:     gin.H{"status": "degraded", "dependencies": status},
				Error:    &response.ErrorBody{Code: response.ErrInternal, Message: "Dependency unavailable."},
				Metadata: response.NewMetadata(c),
			})
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "dependencies": status})
	})

	// ─── 1. API Group (JWT) ────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireIdentity(auth), middleware.NoStore(), middleware.Compress(middleware.DefaultCompressMinLength))
	{
		api.POST("/results", handlers.Result.Submit)
		api.GET("/results/:result_id", handlers.Result.Get)
		api.GET("/stats", handlers.Stats.GetMyStats)
		api.GET("/tests/:test_id/attempt-stats", handlers.Stats.GetTestAttemptStats)
	}

	// ─── 2. WebSocket Group (token via header or ?token=) ──────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireIdentity(auth))
	{
		ws.GET("/tests/:test_id/stream", handlers.WS.AttemptStream)
	}

	return router
}
