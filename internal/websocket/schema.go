package websocket

import (
	"github.com/stemsi/assessment-backend/internal/ident"
	"github.com/stemsi/assessment-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest records or replaces the answer to one question.
type AnswerRequest struct {
	Action          Action    `json:"action"`
	QuestionID      ident.Ref `json:"questionId" binding:"required"`
	SelectedOptions []int     `json:"selectedOptions"`
	TimeSpent       int       `json:"timeSpent" binding:"min=0"`
}

// SubmitRequest finishes the attempt. A zero TimeSpent means the server
// measures the time since the connection opened.
type SubmitRequest struct {
	Action    Action `json:"action"`
	TimeSpent int    `json:"timeSpent" binding:"min=0"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventAnswerSaved Event = "answer_saved"
	EventGraded      Event = "graded"
	EventPong        Event = "pong"
)

type AnswerSavedResponse struct {
	Event      Event     `json:"event"`
	QuestionID ident.Ref `json:"questionId"`
	Answered   int       `json:"answered"`
}

type GradedResponse struct {
	Event   Event               `json:"event"`
	Outcome *model.GradeOutcome `json:"outcome"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
