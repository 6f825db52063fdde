package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/assessment-backend/internal/grading"
	"github.com/stemsi/assessment-backend/internal/ident"
	"github.com/stemsi/assessment-backend/internal/model"
)

// Catalog is the read-only view of authored tests and questions.
type Catalog interface {
	GetTest(ctx context.Context, id int64) (*model.Test, error)
	ListQuestions(ctx context.Context, ids []int64) ([]model.Question, error)
}

// ResultStore persists and loads results.
type ResultStore interface {
	Create(ctx context.Context, res *model.Result) error
	GetByID(ctx context.Context, id int64) (*model.Result, error)
}

// ResultNotifier is told about every persisted result.
type ResultNotifier interface {
	ResultGraded(ctx context.Context, res *model.Result) error
}

// Notifiers fans a result out to several notifiers, attempting all of them.
type Notifiers []ResultNotifier

func (ns Notifiers) ResultGraded(ctx context.Context, res *model.Result) error {
	var errs []error
	for _, n := range ns {
		if err := n.ResultGraded(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GradingService scores submissions and persists them as results.
type GradingService struct {
	catalog             Catalog
	results             ResultStore
	notifier            ResultNotifier
	defaultPassingScore int
	now                 func() time.Time
	log                 zerolog.Logger
}

// NewGradingService creates a new GradingService. notifier may be nil.
func NewGradingService(catalog Catalog, results ResultStore, notifier ResultNotifier, defaultPassingScore int, log zerolog.Logger) *GradingService {
	return &GradingService{
		catalog:             catalog,
		results:             results,
		notifier:            notifier,
		defaultPassingScore: defaultPassingScore,
		now:                 time.Now,
		log:                 log.With().Str("component", "grading").Logger(),
	}
}

// Grade scores a submission against the full question set of its test and
// persists exactly one Result. Answers that match no loaded question, answer a
// malformed question, or repeat an already answered question are skipped and
// reported in the outcome. The call is not idempotent.
func (s *GradingService) Grade(ctx context.Context, userID string, req model.SubmitRequest) (*model.GradeOutcome, error) {
	if req.TestID.IsZero() || req.Answers == nil {
		return nil, fmt.Errorf("%w: testId and answers are required", ErrValidation)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	uid, err := ident.Normalize(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: userId: %w", ErrValidation, err)
	}
	testID, err := req.TestID.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: testId: %w", ErrValidation, err)
	}
	if req.TimeSpent < 0 {
		return nil, fmt.Errorf("%w: timeSpent must not be negative", ErrValidation)
	}

	test, err := s.catalog.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
		}
		return nil, fmt.Errorf("%w: load test %d: %w", ErrStorage, testID, err)
	}

	var diag grading.Diagnostics

	ids, invalid := test.QuestionIDs()
	for _, ref := range invalid {
		diag.Skip(model.SkipInvalidQuestionRef, ref.Key(), fmt.Sprintf("test %d", test.ID))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: test %d has no questions", ErrValidation, test.ID)
	}

	questions, err := s.catalog.ListQuestions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load questions of test %d: %w", ErrStorage, test.ID, err)
	}

	byKey := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byKey[ident.Key(questions[i].ID)] = &questions[i]
	}

	graded := make([]model.GradedAnswer, 0, len(req.Answers))
	answered := make(map[string]struct{}, len(req.Answers))
	correct := 0

	for _, a := range req.Answers {
		if a.TimeSpent < 0 {
			return nil, fmt.Errorf("%w: answer timeSpent must not be negative", ErrValidation)
		}

		key := a.QuestionID.Key()
		q, ok := byKey[key]
		if !ok {
			diag.Skip(model.SkipQuestionNotFound, key, "")
			continue
		}
		if !q.Gradable() {
			diag.Skip(model.SkipQuestionMalformed, key, fmt.Sprintf("%d options", len(q.Options)))
			continue
		}
		if _, dup := answered[key]; dup {
			diag.Skip(model.SkipDuplicateAnswer, key, "")
			continue
		}
		answered[key] = struct{}{}

		g := grading.GradeAnswer(q, a)
		if g.IsCorrect {
			correct++
		}
		graded = append(graded, g)
	}

	total := len(questions)
	score := grading.Percent(correct, total)

	res := &model.Result{
		UserID:         uid,
		TestID:         test.ID,
		Answers:        graded,
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		TimeSpent:      req.TimeSpent,
		IsPassed:       grading.Passed(score, test.PassingScore, s.defaultPassingScore),
		CompletedAt:    s.now().UTC(),
	}
	if err := s.results.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("%w: create result: %w", ErrStorage, err)
	}

	for _, skip := range diag.Items() {
		s.log.Debug().Str("kind", string(skip.Kind)).Str("ref", skip.Ref).Int64("result_id", res.ID).Msg("Answer skipped")
	}
	s.log.Info().
		Int64("user_id", uid).
		Int64("test_id", test.ID).
		Int64("result_id", res.ID).
		Int("score", score).
		Int("correct", correct).
		Int("total", total).
		Msg("Submission graded")

	if s.notifier != nil {
		if err := s.notifier.ResultGraded(ctx, res); err != nil {
			s.log.Warn().Err(err).Int64("result_id", res.ID).Msg("Failed to notify graded result")
		}
	}

	return &model.GradeOutcome{
		Result:         res,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		IsPassed:       res.IsPassed,
		Skipped:        diag.Items(),
	}, nil
}

// GetResult returns one of the user's own results. Results owned by someone
// else are reported as not found.
func (s *GradingService) GetResult(ctx context.Context, userID, resultID string) (*model.Result, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	uid, err := ident.Normalize(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: userId: %w", ErrValidation, err)
	}
	id, err := ident.Normalize(resultID)
	if err != nil {
		return nil, fmt.Errorf("%w: resultId: %w", ErrValidation, err)
	}

	res, err := s.results.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: result %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load result %d: %w", ErrStorage, id, err)
	}
	if res.UserID != uid {
		return nil, fmt.Errorf("%w: result %d", ErrNotFound, id)
	}
	return res, nil
}
