package model

// SkipKind names why an item was left out of grading or aggregation.
type SkipKind string

const (
	SkipQuestionNotFound   SkipKind = "question_not_found"
	SkipQuestionMalformed  SkipKind = "question_malformed"
	SkipDuplicateAnswer    SkipKind = "duplicate_answer"
	SkipInvalidQuestionRef SkipKind = "invalid_question_ref"
	SkipTestNotFound       SkipKind = "test_not_found"
)

// Skip records one absorbed inconsistency.
type Skip struct {
	Kind   SkipKind `json:"kind"`
	Ref    string   `json:"ref"`
	Detail string   `json:"detail,omitempty"`
}
