package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/grading"
	"github.com/stemsi/assessment-backend/internal/ident"
	"github.com/stemsi/assessment-backend/internal/model"
)

// UserLookup resolves users.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// ResultHistory lists a user's results newest first.
type ResultHistory interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Result, error)
}

// TestLister bulk-loads tests.
type TestLister interface {
	ListByIDs(ctx context.Context, ids []int64) ([]model.Test, error)
}

// QuestionLister bulk-loads questions.
type QuestionLister interface {
	ListByIDs(ctx context.Context, ids []int64) ([]model.Question, error)
}

// AttemptStatsReader reads per-test attempt aggregates.
type AttemptStatsReader interface {
	GetByTest(ctx context.Context, testID int64) (*model.TestAttemptStats, error)
}

// StatsService rebuilds user statistics from result history on every call.
type StatsService struct {
	users        UserLookup
	results      ResultHistory
	tests        TestLister
	questions    QuestionLister
	attempts     AttemptStatsReader
	historyLimit int
	recentLimit  int
	log          zerolog.Logger
}

const (
	defaultHistoryLimit = 100
	defaultRecentLimit  = 10
)

// NewStatsService creates a new StatsService. Non-positive limits fall back
// to the defaults (100 results of history, 10 recent).
func NewStatsService(
	users UserLookup,
	results ResultHistory,
	tests TestLister,
	questions QuestionLister,
	attempts AttemptStatsReader,
	historyLimit, recentLimit int,
	log zerolog.Logger,
) *StatsService {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}

	return &StatsService{
		users:        users,
		results:      results,
		tests:        tests,
		questions:    questions,
		attempts:     attempts,
		historyLimit: historyLimit,
		recentLimit:  recentLimit,
		log:          log.With().Str("component", "stats").Logger(),
	}
}

type categoryAcc struct {
	category model.Category
	tests    int
	total    int64
}

// ComputeStats aggregates the user's history. Results pointing at deleted
// tests or questions are kept with fallback values and listed in Diagnostics;
// only storage failures abort the computation.
func (s *StatsService) ComputeStats(ctx context.Context, userID string) (*model.UserStats, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	uid, err := ident.Normalize(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: userId: %w", ErrValidation, err)
	}

	if _, err := s.users.GetByID(ctx, uid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, uid)
		}
		return nil, fmt.Errorf("%w: load user %d: %w", ErrStorage, uid, err)
	}

	results, err := s.results.ListByUser(ctx, uid, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: list results: %w", ErrStorage, err)
	}

	stats := &model.UserStats{
		CategoryStats: []model.CategoryStat{},
		RecentResults: []model.RecentResult{},
	}
	if len(results) == 0 {
		return stats, nil
	}

	testsByID, err := s.loadTests(ctx, results)
	if err != nil {
		return nil, err
	}

	var diag grading.Diagnostics
	missingTests := make(map[int64]struct{})
	missingTest := func(id int64) {
		if _, seen := missingTests[id]; !seen {
			missingTests[id] = struct{}{}
			diag.Skip(model.SkipTestNotFound, ident.Key(id), "")
		}
	}

	var (
		scoreSum   int64
		categories []*categoryAcc
		catIndex   = make(map[model.Category]*categoryAcc)
	)
	for i := range results {
		r := &results[i]
		stats.TotalTests++
		if r.IsPassed {
			stats.PassedTests++
		}
		scoreSum += int64(r.Score)
		stats.TotalTimeSpent += r.TimeSpent

		t, ok := testsByID[r.TestID]
		if !ok {
			missingTest(r.TestID)
			continue
		}
		acc, ok := catIndex[t.Category]
		if !ok {
			acc = &categoryAcc{category: t.Category}
			catIndex[t.Category] = acc
			categories = append(categories, acc)
		}
		acc.tests++
		acc.total += int64(r.Score)
	}

	stats.AverageScore = grading.Mean(scoreSum, len(results))
	for _, acc := range categories {
		stats.CategoryStats = append(stats.CategoryStats, model.CategoryStat{
			Category:     acc.category,
			Tests:        acc.tests,
			AverageScore: grading.Mean(acc.total, acc.tests),
		})
	}

	recent := results
	if len(recent) > s.recentLimit {
		recent = recent[:s.recentLimit]
	}

	questionsByID, err := s.loadQuestions(ctx, recent)
	if err != nil {
		return nil, err
	}

	missingQuestions := make(map[string]struct{})
	for i := range recent {
		r := &recent[i]
		rr := model.RecentResult{
			ID:             r.ID,
			Test:           summarizeTest(r.TestID, testsByID[r.TestID]),
			Score:          r.Score,
			CorrectAnswers: r.CorrectAnswers,
			TotalQuestions: r.TotalQuestions,
			TimeSpent:      r.TimeSpent,
			IsPassed:       r.IsPassed,
			CompletedAt:    r.CompletedAt,
			Answers:        make([]model.AnswerFeedback, 0, len(r.Answers)),
		}

		for j := range r.Answers {
			a := &r.Answers[j]
			var q *model.Question
			if id, err := a.Question.Int64(); err == nil {
				q = questionsByID[id]
			}
			if q == nil {
				key := a.Question.Key()
				if _, seen := missingQuestions[key]; !seen {
					missingQuestions[key] = struct{}{}
					diag.Skip(model.SkipQuestionNotFound, key, fmt.Sprintf("result %d", r.ID))
				}
			}
			rr.Answers = append(rr.Answers, answerFeedback(a, q))
		}
		stats.RecentResults = append(stats.RecentResults, rr)
	}

	stats.Diagnostics = diag.Items()
	if diag.Len() > 0 {
		s.log.Debug().Int64("user_id", uid).Int("skipped", diag.Len()).Msg("Stats computed with unresolved references")
	}
	return stats, nil
}

func (s *StatsService) loadTests(ctx context.Context, results []model.Result) (map[int64]*model.Test, error) {
	seen := make(map[int64]struct{}, len(results))
	ids := make([]int64, 0, len(results))
	for i := range results {
		id := results[i].TestID
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	tests, err := s.tests.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load tests: %w", ErrStorage, err)
	}
	byID := make(map[int64]*model.Test, len(tests))
	for i := range tests {
		byID[tests[i].ID] = &tests[i]
	}
	return byID, nil
}

func (s *StatsService) loadQuestions(ctx context.Context, results []model.Result) (map[int64]*model.Question, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for i := range results {
		for j := range results[i].Answers {
			id, err := results[i].Answers[j].Question.Int64()
			if err != nil {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return map[int64]*model.Question{}, nil
	}

	questions, err := s.questions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load questions: %w", ErrStorage, err)
	}
	byID := make(map[int64]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	return byID, nil
}

func summarizeTest(id int64, t *model.Test) model.TestSummary {
	if t == nil {
		return model.TestSummary{
			ID:         id,
			Title:      model.UnknownTestTitle,
			Category:   model.CategoryUnknown,
			Difficulty: model.DifficultyUnknown,
		}
	}
	return model.TestSummary{ID: t.ID, Title: t.Title, Category: t.Category, Difficulty: t.Difficulty}
}

// answerFeedback flattens the feedback of every selected option. A nil
// question yields nil feedback; selected indices outside the option list
// contribute nothing.
func answerFeedback(a *model.GradedAnswer, q *model.Question) model.AnswerFeedback {
	selected := a.SelectedOptions
	if selected == nil {
		selected = []model.SelectedOption{}
	}
	af := model.AnswerFeedback{
		QuestionID:      a.Question,
		SelectedOptions: selected,
		IsCorrect:       a.IsCorrect,
		TimeSpent:       a.TimeSpent,
	}
	if q == nil {
		return af
	}

	af.Feedback = []model.FeedbackEntry{}
	for _, idx := range a.Indices() {
		if idx < 0 || idx >= len(q.Options) {
			continue
		}
		for _, fb := range q.Options[idx].Feedback {
			af.Feedback = append(af.Feedback, model.FeedbackEntry{
				OptionIndex:  idx,
				FeedbackType: fb.FeedbackType,
				Content:      fb.Content,
			})
		}
	}
	af.Explanation = q.Explanation
	return af
}

// TestAttemptSummary reports how a test has been performing across all users.
func (s *StatsService) TestAttemptSummary(ctx context.Context, testID string) (*model.TestAttemptSummary, error) {
	id, err := ident.Normalize(testID)
	if err != nil {
		return nil, fmt.Errorf("%w: testId: %w", ErrValidation, err)
	}

	st, err := s.attempts.GetByTest(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no attempts for test %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load attempt stats %d: %w", ErrStorage, id, err)
	}

	return &model.TestAttemptSummary{
		TestID:           st.TestID,
		Attempts:         st.Attempts,
		Passed:           st.Passed,
		PassRate:         grading.Rate(st.Passed, st.Attempts),
		AverageScore:     grading.Mean(st.TotalScore, st.Attempts),
		AverageTimeSpent: grading.Mean(st.TotalTimeSpent, st.Attempts),
	}, nil
}
