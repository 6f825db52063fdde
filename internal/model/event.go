package model

import "time"

// ResultGradedEvent is emitted after a Result is persisted. It is consumed by
// the attempt-stats worker and published to the message bus.
type ResultGradedEvent struct {
	ResultID    int64     `json:"resultId"`
	UserID      int64     `json:"userId"`
	TestID      int64     `json:"testId"`
	Score       int       `json:"score"`
	IsPassed    bool      `json:"isPassed"`
	TimeSpent   int       `json:"timeSpent"`
	CompletedAt time.Time `json:"completedAt"`
}

// NewResultGradedEvent builds the event for a persisted result.
func NewResultGradedEvent(r *Result) ResultGradedEvent {
	return ResultGradedEvent{
		ResultID:    r.ID,
		UserID:      r.UserID,
		TestID:      r.TestID,
		Score:       r.Score,
		IsPassed:    r.IsPassed,
		TimeSpent:   r.TimeSpent,
		CompletedAt: r.CompletedAt,
	}
}
