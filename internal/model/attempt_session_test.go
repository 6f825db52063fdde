package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/assessment-backend/internal/ident"
)

func TestAttemptSessionRecordReplaces(t *testing.T) {
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	s := NewAttemptSession(ident.RefOf(4), start)

	assert.Equal(t, 1, s.Record(Answer{QuestionID: ident.RefOf(11), SelectedOptions: []int{0}}))
	assert.Equal(t, 2, s.Record(Answer{QuestionID: ident.NewRef("12"), SelectedOptions: []int{1}}))
	assert.Equal(t, 2, s.Record(Answer{QuestionID: ident.NewRef("11"), SelectedOptions: []int{2}}))

	req := s.Submission(start.Add(95*time.Second), 0)
	assert.Equal(t, "4", req.TestID.Key())
	assert.Equal(t, 95, req.TimeSpent)
	require.Len(t, req.Answers, 2)
	assert.Equal(t, "11", req.Answers[0].QuestionID.Key())
	assert.Equal(t, []int{2}, req.Answers[0].SelectedOptions)
}

func TestAttemptSessionSnapshotIsIsolated(t *testing.T) {
	s := NewAttemptSession(ident.RefOf(1), time.Now())
	selected := []int{1}
	s.Record(Answer{QuestionID: ident.RefOf(3), SelectedOptions: selected})
	selected[0] = 9

	req := s.Submission(time.Now(), 30)
	assert.Equal(t, 30, req.TimeSpent)
	assert.Equal(t, []int{1}, req.Answers[0].SelectedOptions)

	req.Answers[0].SelectedOptions[0] = 7
	assert.Equal(t, []int{1}, s.Submission(time.Now(), 30).Answers[0].SelectedOptions)
}

func TestAttemptSessionEmptySubmissionIsNotNil(t *testing.T) {
	s := NewAttemptSession(ident.RefOf(1), time.Now())
	assert.NotNil(t, s.Submission(time.Now(), 1).Answers)
	assert.False(t, s.Submitted())
	s.MarkSubmitted()
	assert.True(t, s.Submitted())
}
