package model

import (
	"time"

	"github.com/stemsi/assessment-backend/internal/ident"
)

// SelectedOption is one chosen option index inside a graded answer.
type SelectedOption struct {
	OptionIndex int `json:"optionIndex"`
}

// GradedAnswer is a persisted, graded answer. Question keeps the reference as
// stored so historical rows with string ids still decode.
type GradedAnswer struct {
	Question        ident.Ref        `json:"question"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	IsCorrect       bool             `json:"isCorrect"`
	TimeSpent       int              `json:"timeSpent"`
}

// Indices returns the selected option indices in submission order.
func (a *GradedAnswer) Indices() []int {
	out := make([]int, len(a.SelectedOptions))
	for i, s := range a.SelectedOptions {
		out[i] = s.OptionIndex
	}
	return out
}

// Result is the scored outcome of one completed attempt. Immutable once created.
type Result struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"userId"`
	TestID         int64          `json:"testId"`
	Answers        []GradedAnswer `json:"answers"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	TimeSpent      int            `json:"timeSpent"`
	IsPassed       bool           `json:"isPassed"`
	CompletedAt    time.Time      `json:"completedAt"`
}

// GradeOutcome is returned to the submitter after grading.
type GradeOutcome struct {
	Result         *Result `json:"result"`
	Score          int     `json:"score"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	IsPassed       bool    `json:"isPassed"`
	Skipped        []Skip  `json:"skipped,omitempty"`
}
