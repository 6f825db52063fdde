package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/middleware"
	"github.com/stemsi/assessment-backend/internal/model"
	"github.com/stemsi/assessment-backend/internal/response"
)

// StatsProvider computes user and per-test statistics.
type StatsProvider interface {
	ComputeStats(ctx context.Context, userID string) (*model.UserStats, error)
	TestAttemptSummary(ctx context.Context, testID string) (*model.TestAttemptSummary, error)
}

// StatsHandler handles dashboard statistics endpoints.
type StatsHandler struct {
	stats StatsProvider
	log   zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats StatsProvider, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, log: log.With().Str("component", "stats_handler").Logger()}
}

// GetMyStats godoc
// GET /api/v1/stats
// Returns totals, category breakdown and recent results with feedback.
func (h *StatsHandler) GetMyStats(c *gin.Context) {
	stats, err := h.stats.ComputeStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// GetTestAttemptStats godoc
// GET /api/v1/tests/:test_id/attempt-stats
func (h *StatsHandler) GetTestAttemptStats(c *gin.Context) {
	summary, err := h.stats.TestAttemptSummary(c.Request.Context(), c.Param("test_id"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}
