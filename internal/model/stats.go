package model

import (
	"time"

	"github.com/stemsi/assessment-backend/internal/ident"
)

// UserStats is a user's performance, recomputed from result history on every read.
type UserStats struct {
	TotalTests     int            `json:"totalTests"`
	PassedTests    int            `json:"passedTests"`
	AverageScore   int            `json:"averageScore"`
	TotalTimeSpent int            `json:"totalTimeSpent"`
	CategoryStats  []CategoryStat `json:"categoryStats"`
	RecentResults  []RecentResult `json:"recentResults"`
	Diagnostics    []Skip         `json:"diagnostics,omitempty"`
}

// CategoryStat aggregates results of tests sharing a category.
type CategoryStat struct {
	Category     Category `json:"category"`
	Tests        int      `json:"tests"`
	AverageScore int      `json:"averageScore"`
}

// TestSummary identifies the test a recent result belongs to.
type TestSummary struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// RecentResult is a result enriched with test metadata and per-answer feedback.
type RecentResult struct {
	ID             int64            `json:"id"`
	Test           TestSummary      `json:"test"`
	Score          int              `json:"score"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	TimeSpent      int              `json:"timeSpent"`
	IsPassed       bool             `json:"isPassed"`
	CompletedAt    time.Time        `json:"completedAt"`
	Answers        []AnswerFeedback `json:"answers"`
}

// AnswerFeedback is a graded answer with the feedback of the options chosen.
// Feedback is nil when the question no longer resolves.
type AnswerFeedback struct {
	QuestionID      ident.Ref        `json:"questionId"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	IsCorrect       bool             `json:"isCorrect"`
	TimeSpent       int              `json:"timeSpent"`
	Feedback        []FeedbackEntry  `json:"feedback"`
	Explanation     *string          `json:"explanation,omitempty"`
}

// FeedbackEntry is one feedback item flattened from a selected option.
type FeedbackEntry struct {
	OptionIndex  int          `json:"optionIndex"`
	FeedbackType FeedbackType `json:"feedbackType"`
	Content      string       `json:"content"`
}

// TestAttemptStats is the running per-test aggregate kept by the attempt-stats worker.
type TestAttemptStats struct {
	TestID         int64     `json:"testId"`
	Attempts       int       `json:"attempts"`
	Passed         int       `json:"passed"`
	TotalScore     int64     `json:"totalScore"`
	TotalTimeSpent int64     `json:"totalTimeSpent"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TestAttemptSummary is the client view of TestAttemptStats.
type TestAttemptSummary struct {
	TestID           int64   `json:"testId"`
	Attempts         int     `json:"attempts"`
	Passed           int     `json:"passed"`
	PassRate         float64 `json:"passRate"`
	AverageScore     int     `json:"averageScore"`
	AverageTimeSpent int     `json:"averageTimeSpent"`
}

// AttemptDelta is an increment to apply to a test's TestAttemptStats.
type AttemptDelta struct {
	TestID    int64
	Attempts  int
	Passed    int
	Score     int64
	TimeSpent int64
}
