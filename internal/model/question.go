package model

import (
	"encoding/json"
	"time"
)

// FeedbackType tags feedback attached to an option.
type FeedbackType string

const (
	FeedbackCorrect   FeedbackType = "correct"
	FeedbackIncorrect FeedbackType = "incorrect"
)

// Feedback is content shown to a user who selected the owning option.
type Feedback struct {
	FeedbackType FeedbackType `json:"feedbackType"`
	Content      string       `json:"content"`
}

// Option is one selectable choice of a question.
type Option struct {
	Text      string     `json:"text"`
	IsCorrect bool       `json:"isCorrect"`
	Feedback  []Feedback `json:"feedback,omitempty"`
}

// Question is a multiple-choice prompt. Content is opaque rich content.
type Question struct {
	ID          int64           `json:"id"`
	Content     json.RawMessage `json:"content"`
	Options     []Option        `json:"options"`
	Explanation *string         `json:"explanation,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MinOptions is the smallest option count a question can be graded with.
const MinOptions = 2

// Gradable reports whether the question has enough options to grade an answer against.
func (q *Question) Gradable() bool {
	return len(q.Options) >= MinOptions
}
