package model

import "github.com/stemsi/assessment-backend/internal/ident"

// Answer is a user's selection for one question at submission time.
type Answer struct {
	QuestionID      ident.Ref `json:"questionId"`
	SelectedOptions []int     `json:"selectedOptions"`
	TimeSpent       int       `json:"timeSpent" binding:"min=0"`
}

// SubmitRequest is the payload for grading a completed attempt.
// A nil Answers slice means the field was missing; an empty one is a valid,
// unanswered attempt.
type SubmitRequest struct {
	TestID    ident.Ref `json:"testId" binding:"required"`
	Answers   []Answer  `json:"answers" binding:"required,dive"`
	TimeSpent int       `json:"timeSpent" binding:"min=0"`
}
