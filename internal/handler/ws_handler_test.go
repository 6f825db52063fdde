package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/assessment-backend/internal/model"
	"github.com/stemsi/assessment-backend/internal/service"
	"github.com/stemsi/assessment-backend/internal/validator"
)

func dialStream(t *testing.T, g Grader, user, testID string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	h := NewWSHandler(g, zerolog.Nop(), nil)
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	calls := 0
	h.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 90 * time.Second)
	}

	r := gin.New()
	r.GET("/ws/v1/tests/:test_id/stream", withUser(user), h.AttemptStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/tests/" + testID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) map[string]any {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var out map[string]any
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestAttemptStreamAnswerAndSubmit(t *testing.T) {
	g := &fakeGrader{out: &model.GradeOutcome{Score: 50, CorrectAnswers: 1, TotalQuestions: 2}}
	conn := dialStream(t, g, "7", "3")

	assert.Equal(t, "pong", roundTrip(t, conn, `{"action":"ping"}`)["event"])

	saved := roundTrip(t, conn, `{"action":"answer","questionId":"11","selectedOptions":[0]}`)
	assert.Equal(t, "answer_saved", saved["event"])
	assert.Equal(t, float64(1), saved["answered"])
	assert.Equal(t, float64(11), saved["questionId"])

	roundTrip(t, conn, `{"action":"answer","questionId":12,"selectedOptions":[1],"timeSpent":8}`)
	saved = roundTrip(t, conn, `{"action":"answer","questionId":11,"selectedOptions":[2]}`)
	assert.Equal(t, float64(2), saved["answered"])

	graded := roundTrip(t, conn, `{"action":"submit"}`)
	assert.Equal(t, "graded", graded["event"])
	outcome := graded["outcome"].(map[string]any)
	assert.Equal(t, float64(50), outcome["score"])

	assert.Equal(t, 1, g.calls)
	assert.Equal(t, "7", g.gotUser)
	assert.Equal(t, "3", g.gotReq.TestID.Key())
	assert.Equal(t, 90, g.gotReq.TimeSpent)
	require.Len(t, g.gotReq.Answers, 2)
	assert.Equal(t, []int{2}, g.gotReq.Answers[0].SelectedOptions)

	again := roundTrip(t, conn, `{"action":"submit"}`)
	assert.Equal(t, "error", again["event"])
	assert.Equal(t, 1, g.calls)
}

func TestAttemptStreamErrors(t *testing.T) {
	g := &fakeGrader{err: errors.New("boom")}
	conn := dialStream(t, g, "7", "3")

	assert.Equal(t, "error", roundTrip(t, conn, `not json`)["event"])
	assert.Equal(t, "error", roundTrip(t, conn, `{"action":"cheat"}`)["event"])
	assert.Equal(t, "error", roundTrip(t, conn, `{"action":"answer","selectedOptions":[1]}`)["event"])

	failed := roundTrip(t, conn, `{"action":"submit","timeSpent":30}`)
	assert.Equal(t, "error", failed["event"])
	assert.Equal(t, "Internal server error.", failed["error"])

	// A failed submit leaves the session open for a retry.
	g.err = nil
	g.out = &model.GradeOutcome{Score: 0}
	assert.Equal(t, "graded", roundTrip(t, conn, `{"action":"submit","timeSpent":30}`)["event"])
	assert.Equal(t, 30, g.gotReq.TimeSpent)
}

func TestAttemptStreamValidationMessage(t *testing.T) {
	g := &fakeGrader{err: errors.Join(service.ErrValidation, errors.New("test 3 has no questions"))}
	conn := dialStream(t, g, "7", "3")

	failed := roundTrip(t, conn, `{"action":"submit"}`)
	assert.Contains(t, failed["error"], "no questions")
}

func TestAttemptStreamRejectsBeforeUpgrade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWSHandler(&fakeGrader{}, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/anon/:test_id", withUser(""), h.AttemptStream)
	r.GET("/user/:test_id", withUser("7"), h.AttemptStream)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon/3", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuildUpgraderOrigins(t *testing.T) {
	up := buildUpgrader([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://APP.example.com")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))

	assert.True(t, buildUpgrader(nil).CheckOrigin(req))
}
