package model

import (
	"time"

	"github.com/stemsi/assessment-backend/internal/ident"
)

// AttemptSession holds the in-progress answers of one attempt on one
// connection. It is not safe for concurrent use and never shared; grading
// receives an immutable snapshot through Submission.
type AttemptSession struct {
	testID    ident.Ref
	startedAt time.Time
	order     []string
	answers   map[string]Answer
	submitted bool
}

// NewAttemptSession starts an empty attempt on testID.
func NewAttemptSession(testID ident.Ref, startedAt time.Time) *AttemptSession {
	return &AttemptSession{
		testID:    testID,
		startedAt: startedAt,
		answers:   make(map[string]Answer),
	}
}

// Record stores a, replacing any earlier answer to the same question, and
// returns the number of distinct questions answered so far.
func (s *AttemptSession) Record(a Answer) int {
	key := a.QuestionID.Key()
	if _, ok := s.answers[key]; !ok {
		s.order = append(s.order, key)
	}
	a.SelectedOptions = append([]int(nil), a.SelectedOptions...)
	s.answers[key] = a
	return len(s.order)
}

// Submission snapshots the session into a submit request. A non-positive
// timeSpent is replaced by the whole seconds elapsed since the session started.
func (s *AttemptSession) Submission(now time.Time, timeSpent int) SubmitRequest {
	if timeSpent <= 0 {
		timeSpent = int(now.Sub(s.startedAt) / time.Second)
	}

	answers := make([]Answer, 0, len(s.order))
	for _, key := range s.order {
		a := s.answers[key]
		a.SelectedOptions = append([]int(nil), a.SelectedOptions...)
		answers = append(answers, a)
	}
	return SubmitRequest{TestID: s.testID, Answers: answers, TimeSpent: timeSpent}
}

// MarkSubmitted closes the session to further answers and submissions.
func (s *AttemptSession) MarkSubmitted() {
	s.submitted = true
}

// Submitted reports whether the attempt was already graded.
func (s *AttemptSession) Submitted() bool {
	return s.submitted
}
