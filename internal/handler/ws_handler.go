package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/ident"
	"github.com/stemsi/assessment-backend/internal/middleware"
	"github.com/stemsi/assessment-backend/internal/model"
	"github.com/stemsi/assessment-backend/internal/response"
	"github.com/stemsi/assessment-backend/internal/validator"
	ws "github.com/stemsi/assessment-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a test attempt over a WebSocket.
type WSHandler struct {
	grader   Grader
	log      zerolog.Logger
	upgrader websocket.Upgrader
	now      func() time.Time
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(grader Grader, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		grader:   grader,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
		now:      time.Now,
	}
}

// AttemptStream godoc
// WS /ws/v1/tests/:test_id/stream
// Collects answers for one attempt and grades them on submit. Each
// connection owns its own AttemptSession.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := ident.Normalize(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", userID).
		Int64("test_id", testID).
		Logger()

	wsLog.Info().Msg("Attempt stream opened")

	session := model.NewAttemptSession(ident.RefOf(testID), h.now())

	for {
		env, raw, err := ws.ReadEnvelope(conn)
		if err != nil {
			if errors.Is(err, ws.ErrMalformed) {
				ws.WriteError(conn, response.GetMessage(response.ErrInvalidPayload))
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch env.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, session, raw)
		case ws.ActionSubmit:
			h.handleSubmit(c.Request.Context(), conn, wsLog, session, userID, raw)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			ws.WriteError(conn, response.GetMessage(response.ErrUnknownAction)+" "+string(env.Action))
		}
	}
}

// handleAnswer records one answer in the connection's session.
func (h *WSHandler) handleAnswer(conn *websocket.Conn, session *model.AttemptSession, raw []byte) {
	if session.Submitted() {
		ws.WriteError(conn, "attempt already submitted")
		return
	}

	var msg ws.AnswerRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, response.GetMessage(response.ErrInvalidPayload))
		return
	}
	if fields := validator.Struct(&msg); fields != nil {
		ws.WriteError(conn, response.GetMessage(response.ErrValidation))
		return
	}

	answered := session.Record(model.Answer{
		QuestionID:      msg.QuestionID,
		SelectedOptions: msg.SelectedOptions,
		TimeSpent:       msg.TimeSpent,
	})
	ws.WriteTyped(conn, ws.AnswerSavedResponse{
		Event:      ws.EventAnswerSaved,
		QuestionID: msg.QuestionID,
		Answered:   answered,
	})
}

// handleSubmit grades a snapshot of the session. The session is closed only
// once a result was stored, so a failed submit can be retried.
func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, session *model.AttemptSession, userID string, raw []byte) {
	if session.Submitted() {
		ws.WriteError(conn, "attempt already submitted")
		return
	}

	var msg ws.SubmitRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, response.GetMessage(response.ErrInvalidPayload))
		return
	}
	if fields := validator.Struct(&msg); fields != nil {
		ws.WriteError(conn, response.GetMessage(response.ErrValidation))
		return
	}

	out, err := h.grader.Grade(ctx, userID, session.Submission(h.now(), msg.TimeSpent))
	if err != nil {
		wsLog.Error().Err(err).Msg("Grading failed")
		ws.WriteError(conn, wsErrorMessage(err))
		return
	}
	session.MarkSubmitted()

	wsLog.Info().
		Int("score", out.Score).
		Int("correct", out.CorrectAnswers).
		Int("total", out.TotalQuestions).
		Msg("Attempt submitted and graded")

	ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Outcome: out})
}
