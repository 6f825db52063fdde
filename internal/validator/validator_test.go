package validator

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/assessment-backend/internal/model"
)

func newValidate() *govalidator.Validate {
	v := govalidator.New()
	v.SetTagName("binding")
	configure(v)
	return v
}

func decode(t *testing.T, raw string) model.SubmitRequest {
	t.Helper()
	var req model.SubmitRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	return req
}

func TestSubmitRequestRules(t *testing.T) {
	v := newValidate()

	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing test id", `{"answers": []}`, "testId"},
		{"null test id", `{"testId": null, "answers": []}`, "testId"},
		{"blank test id", `{"testId": "  ", "answers": []}`, "testId"},
		{"missing answers", `{"testId": 1}`, "answers"},
		{"negative answer time", `{"testId": 1, "answers": [{"questionId": 2, "selectedOptions": [0], "timeSpent": -4}]}`, "answers[0].timeSpent"},
		{"negative total time", `{"testId": 1, "answers": [], "timeSpent": -1}`, "timeSpent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(decode(t, tt.raw))
			require.Error(t, err)
			assert.Contains(t, TranslateErrors(err), tt.field)
		})
	}
}

func TestSubmitRequestAcceptsLooseIDs(t *testing.T) {
	v := newValidate()

	for _, raw := range []string{
		`{"testId": 1, "answers": []}`,
		`{"testId": "1", "answers": [{"questionId": "2", "selectedOptions": [1]}]}`,
		`{"testId": {"id": 1}, "answers": [{"questionId": 2, "selectedOptions": []}], "timeSpent": 30}`,
	} {
		assert.NoError(t, v.Struct(decode(t, raw)), raw)
	}
}

func TestTranslateErrorsNonValidation(t *testing.T) {
	fields := TranslateErrors(errors.New("unexpected EOF"))
	assert.Equal(t, map[string]string{"detail": "unexpected EOF"}, fields)
}

func TestIsSyntaxError(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte(`{"testId":`), &dst)
	require.Error(t, err)
	assert.True(t, IsSyntaxError(err))
	assert.True(t, IsSyntaxError(io.ErrUnexpectedEOF))

	var n struct{ TimeSpent int }
	err = json.Unmarshal([]byte(`{"TimeSpent":"x"}`), &n)
	assert.True(t, IsSyntaxError(err))

	assert.False(t, IsSyntaxError(errors.New("other")))
}

func TestStructUsesGinEngine(t *testing.T) {
	Setup()
	fields := Struct(&model.SubmitRequest{Answers: []model.Answer{}})
	assert.Contains(t, fields, "testId")
}
