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

// Grader grades submissions and serves stored results.
type Grader interface {
	Grade(ctx context.Context, userID string, req model.SubmitRequest) (*model.GradeOutcome, error)
	GetResult(ctx context.Context, userID, resultID string) (*model.Result, error)
}

// ResultHandler handles result submission and lookup.
type ResultHandler struct {
	grader Grader
	log    zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(grader Grader, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{grader: grader, log: log.With().Str("component", "result_handler").Logger()}
}

// Submit godoc
// POST /api/v1/results
// Grades a completed attempt and stores the result.
func (h *ResultHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}

	out, err := h.grader.Grade(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, out)
}

// Get godoc
// GET /api/v1/results/:result_id
func (h *ResultHandler) Get(c *gin.Context) {
	res, err := h.grader.GetResult(c.Request.Context(), middleware.GetUserID(c), c.Param("result_id"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}
