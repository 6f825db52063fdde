package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/assessment-backend/internal/ident"
	"github.com/stemsi/assessment-backend/internal/middleware"
	"github.com/stemsi/assessment-backend/internal/model"
	"github.com/stemsi/assessment-backend/internal/response"
	"github.com/stemsi/assessment-backend/internal/service"
	"github.com/stemsi/assessment-backend/internal/validator"
)

type fakeGrader struct {
	gotUser string
	gotReq  model.SubmitRequest
	calls   int
	out     *model.GradeOutcome
	err     error
	result  *model.Result
}

func (f *fakeGrader) Grade(_ context.Context, userID string, req model.SubmitRequest) (*model.GradeOutcome, error) {
	f.calls++
	f.gotUser = userID
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeGrader) GetResult(_ context.Context, userID, resultID string) (*model.Result, error) {
	f.gotUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStats struct {
	stats   *model.UserStats
	summary *model.TestAttemptSummary
	err     error
}

func (f *fakeStats) ComputeStats(context.Context, string) (*model.UserStats, error) {
	return f.stats, f.err
}

func (f *fakeStats) TestAttemptSummary(context.Context, string) (*model.TestAttemptSummary, error) {
	return f.summary, f.err
}

// withUser stands in for RequireIdentity.
func withUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: ident.NewRef(id)})
		}
		c.Next()
	}
}

func newTestEngine(user string, g Grader, s StatsProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	r := gin.New()
	r.Use(response.RequestIDMiddleware(), withUser(user))
	rh := NewResultHandler(g, zerolog.Nop())
	sh := NewStatsHandler(s, zerolog.Nop())
	r.POST("/api/v1/results", rh.Submit)
	r.GET("/api/v1/results/:result_id", rh.Get)
	r.GET("/api/v1/stats", sh.GetMyStats)
	r.GET("/api/v1/tests/:test_id/attempt-stats", sh.GetTestAttemptStats)
	return r
}

type envelope struct {
	Data     json.RawMessage     `json:"data"`
	Error    *response.ErrorBody `json:"error"`
	Metadata response.Metadata   `json:"metadata"`
}

func do(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestSubmitCreated(t *testing.T) {
	g := &fakeGrader{out: &model.GradeOutcome{Score: 100, CorrectAnswers: 4, TotalQuestions: 4, IsPassed: true}}
	r := newTestEngine("7", g, &fakeStats{})

	w, env := do(t, r, http.MethodPost, "/api/v1/results",
		`{"testId": "3", "answers": [{"questionId": 11, "selectedOptions": [1], "timeSpent": 4}], "timeSpent": 60}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, env.Error)
	assert.NotEmpty(t, env.Metadata.RequestID)
	assert.Equal(t, w.Header().Get("X-Request-ID"), env.Metadata.RequestID)
	assert.JSONEq(t, `{"result":null,"score":100,"correctAnswers":4,"totalQuestions":4,"isPassed":true}`, string(env.Data))

	assert.Equal(t, "7", g.gotUser)
	assert.Equal(t, "3", g.gotReq.TestID.Key())
	assert.Equal(t, 60, g.gotReq.TimeSpent)
	require.Len(t, g.gotReq.Answers, 1)
	assert.Equal(t, []int{1}, g.gotReq.Answers[0].SelectedOptions)
}

func TestSubmitBadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		code response.ErrCode
	}{
		{"broken json", `{"testId": 1,`, response.ErrInvalidPayload},
		{"wrong type", `{"testId": 1, "answers": [], "timeSpent": "long"}`, response.ErrInvalidPayload},
		{"missing answers", `{"testId": 1}`, response.ErrValidation},
		{"missing test", `{"answers": []}`, response.ErrValidation},
		{"blank test", `{"testId": "  ", "answers": []}`, response.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGrader{}
			w, env := do(t, newTestEngine("7", g, &fakeStats{}), http.MethodPost, "/api/v1/results", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Zero(t, g.calls)
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{fmt.Errorf("%w: testId: bad", service.ErrValidation), http.StatusBadRequest, response.ErrValidation},
		{service.ErrUnauthenticated, http.StatusUnauthorized, response.ErrTokenRequired},
		{fmt.Errorf("%w: test 9", service.ErrNotFound), http.StatusNotFound, response.ErrNotFound},
		{fmt.Errorf("%w: create result: %w", service.ErrStorage, errors.New("pq: secret detail")), http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			r := newTestEngine("7", &fakeGrader{err: tt.err}, &fakeStats{})
			w, env := do(t, r, http.MethodPost, "/api/v1/results", `{"testId": 9, "answers": []}`)

			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotContains(t, w.Body.String(), "secret detail")
		})
	}
}

func TestGetResult(t *testing.T) {
	g := &fakeGrader{result: &model.Result{ID: 5, UserID: 7, TestID: 3, Score: 80, Answers: []model.GradedAnswer{}}}
	w, env := do(t, newTestEngine("7", g, &fakeStats{}), http.MethodGet, "/api/v1/results/5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var res model.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, int64(5), res.ID)

	w, _ = do(t, newTestEngine("7", &fakeGrader{err: service.ErrNotFound}, &fakeStats{}), http.MethodGet, "/api/v1/results/6", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMyStats(t *testing.T) {
	stats := &model.UserStats{CategoryStats: []model.CategoryStat{}, RecentResults: []model.RecentResult{}}
	w, env := do(t, newTestEngine("7", &fakeGrader{}, &fakeStats{stats: stats}), http.MethodGet, "/api/v1/stats", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalTests":0,"passedTests":0,"averageScore":0,"totalTimeSpent":0,"categoryStats":[],"recentResults":[]}`, string(env.Data))
}

func TestGetTestAttemptStats(t *testing.T) {
	summary := &model.TestAttemptSummary{TestID: 3, Attempts: 4, Passed: 3, PassRate: 75, AverageScore: 81, AverageTimeSpent: 200}
	w, env := do(t, newTestEngine("7", &fakeGrader{}, &fakeStats{summary: summary}), http.MethodGet, "/api/v1/tests/3/attempt-stats", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"testId":3,"attempts":4,"passed":3,"passRate":75,"averageScore":81,"averageTimeSpent":200}`, string(env.Data))

	w, _ = do(t, newTestEngine("7", &fakeGrader{}, &fakeStats{err: service.ErrNotFound}), http.MethodGet, "/api/v1/tests/3/attempt-stats", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
