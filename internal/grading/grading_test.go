package grading

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/assessment-backend/internal/ident"
	"github.com/stemsi/assessment-backend/internal/model"
)

func options(correct ...bool) []model.Option {
	out := make([]model.Option, len(correct))
	for i, c := range correct {
		out[i] = model.Option{Text: "option", IsCorrect: c}
	}
	return out
}

func TestIsCorrect(t *testing.T) {
	multi := options(true, false, true, false)
	single := options(false, true, false)

	tests := []struct {
		name     string
		options  []model.Option
		selected []int
		want     bool
	}{
		{"single exact", single, []int{1}, true},
		{"single wrong", single, []int{0}, false},
		{"multi exact", multi, []int{0, 2}, true},
		{"multi exact reversed", multi, []int{2, 0}, true},
		{"multi subset", multi, []int{0}, false},
		{"multi superset", multi, []int{0, 1, 2}, false},
		{"empty selection", multi, []int{}, false},
		{"nil selection", multi, nil, false},
		{"repeated index is not a second pick", multi, []int{0, 0}, false},
		{"repeated index on full set", multi, []int{0, 2, 2}, true},
		{"out of range", single, []int{7}, false},
		{"negative", single, []int{-1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrect(tt.options, tt.selected))
		})
	}
}

func TestIsCorrectAnyOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for n := 2; n <= 8; n++ {
		opts := make([]model.Option, n)
		for i := range opts {
			opts[i] = model.Option{Text: "o", IsCorrect: rng.Intn(2) == 0}
		}
		opts[rng.Intn(n)].IsCorrect = true

		correct := CorrectIndices(opts)
		for round := 0; round < 20; round++ {
			shuffled := append([]int(nil), correct...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			assert.True(t, IsCorrect(opts, shuffled), "exact set %v of %d options", shuffled, n)

			if len(correct) > 1 {
				assert.False(t, IsCorrect(opts, shuffled[1:]), "proper subset %v", shuffled[1:])
			}
			for i, o := range opts {
				if !o.IsCorrect {
					assert.False(t, IsCorrect(opts, append(shuffled, i)), "superset with %d", i)
					break
				}
			}
		}
	}
}

func TestGradeAnswer(t *testing.T) {
	q := &model.Question{ID: 4, Options: options(false, true)}
	got := GradeAnswer(q, model.Answer{QuestionID: ident.NewRef("4"), SelectedOptions: []int{1}, TimeSpent: 12})

	assert.True(t, got.IsCorrect)
	assert.Equal(t, []model.SelectedOption{{OptionIndex: 1}}, got.SelectedOptions)
	assert.Equal(t, 12, got.TimeSpent)
	assert.Equal(t, "4", got.Question.Key())
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole, want int
	}{
		{4, 4, 100},
		{2, 4, 50},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{1, 40, 3},
		{3, 0, 0},
		{5, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.part, tt.whole), "%d/%d", tt.part, tt.whole)
	}
}

func TestPercentStaysInRange(t *testing.T) {
	for whole := 1; whole <= 60; whole++ {
		for part := 0; part <= whole; part++ {
			p := Percent(part, whole)
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
		}
	}
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0, Mean(0, 0))
	assert.Equal(t, 75, Mean(150, 2))
	assert.Equal(t, 83, Mean(250, 3))
	assert.Equal(t, 84, Mean(335, 4)) // 83.75
	assert.Equal(t, 63, Mean(125, 2)) // 62.5 rounds up
}

func TestPassed(t *testing.T) {
	zero := 0
	eighty := 80

	assert.True(t, Passed(70, nil, 70))
	assert.False(t, Passed(69, nil, 70))
	assert.False(t, Passed(75, &eighty, 70))
	assert.True(t, Passed(0, &zero, 70))
}

func TestDiagnostics(t *testing.T) {
	var d Diagnostics
	assert.Nil(t, d.Items())

	d.Skip(model.SkipQuestionNotFound, "9", "")
	d.Skip(model.SkipDuplicateAnswer, "3", "second answer")

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, model.SkipDuplicateAnswer, d.Items()[1].Kind)
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, Rate(0, 0))
	assert.Equal(t, 0.0, Rate(0, 5))
	assert.Equal(t, 66.7, Rate(2, 3))
	assert.Equal(t, 100.0, Rate(4, 4))
	assert.Equal(t, 12.5, Rate(1, 8))
}
