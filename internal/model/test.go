package model

import (
	"time"

	"github.com/stemsi/assessment-backend/internal/ident"
)

// Category classifies a test for aggregation.
type Category string

const (
	CategoryReact      Category = "react"
	CategoryNextJS     Category = "nextjs"
	CategoryJavaScript Category = "javascript"
	CategoryTypeScript Category = "typescript"
	CategoryCSSHTML    Category = "css-html"
	CategoryGeneral    Category = "general"
	CategoryMixed      Category = "mixed"

	// CategoryUnknown stands in for a test that no longer resolves.
	CategoryUnknown Category = "unknown"
)

// Difficulty enumerates test difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyMixed  Difficulty = "mixed"

	DifficultyUnknown Difficulty = "unknown"
)

// UnknownTestTitle is the title reported for a test that no longer resolves.
const UnknownTestTitle = "Unknown"

// Test is an authored collection of questions.
// Questions holds references as stored: bare ids or objects carrying an id.
type Test struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Category     Category    `json:"category"`
	Difficulty   Difficulty  `json:"difficulty"`
	Questions    []ident.Ref `json:"questions"`
	PassingScore *int        `json:"passingScore,omitempty"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// QuestionIDs returns the normalized question ids in order without repeats,
// plus the references that could not be normalized.
func (t *Test) QuestionIDs() (ids []int64, invalid []ident.Ref) {
	seen := make(map[int64]struct{}, len(t.Questions))
	for _, ref := range t.Questions {
		id, err := ref.Int64()
		if err != nil {
			invalid = append(invalid, ref)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, invalid
}
