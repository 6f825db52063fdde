// Package grading holds the pure rules shared by grading and aggregation:
// answer matching, score arithmetic and skip diagnostics.
package grading

import (
	"github.com/stemsi/assessment-backend/internal/ident"
	"github.com/stemsi/assessment-backend/internal/model"
)

// CorrectIndices returns the indices of options marked correct.
func CorrectIndices(options []model.Option) []int {
	var out []int
	for i, o := range options {
		if o.IsCorrect {
			out = append(out, i)
		}
	}
	return out
}

// IsCorrect applies exact-set matching. Repeated indices count once. The
// answer is correct only when something was selected, every selected index
// names a correct option, and as many distinct options were selected as are
// correct. Subsets, supersets and empty selections are all wrong.
func IsCorrect(options []model.Option, selected []int) bool {
	if len(selected) == 0 {
		return false
	}

	distinct := make(map[int]struct{}, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(options) || !options[idx].IsCorrect {
			return false
		}
		distinct[idx] = struct{}{}
	}

	return len(distinct) == len(CorrectIndices(options))
}

// GradeAnswer grades a single answer against its resolved question. The
// stored reference is the question's canonical id, whatever shape was submitted.
func GradeAnswer(q *model.Question, a model.Answer) model.GradedAnswer {
	selected := make([]model.SelectedOption, len(a.SelectedOptions))
	for i, idx := range a.SelectedOptions {
		selected[i] = model.SelectedOption{OptionIndex: idx}
	}

	return model.GradedAnswer{
		Question:        ident.RefOf(q.ID),
		SelectedOptions: selected,
		IsCorrect:       IsCorrect(q.Options, a.SelectedOptions),
		TimeSpent:       a.TimeSpent,
	}
}
