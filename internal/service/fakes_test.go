package service

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/assessment-backend/internal/model"
)

type fakeCatalog struct {
	tests       map[int64]*model.Test
	questions   map[int64]model.Question
	testErr     error
	questionErr error
	asked       [][]int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{tests: map[int64]*model.Test{}, questions: map[int64]model.Question{}}
}

func (f *fakeCatalog) GetTest(_ context.Context, id int64) (*model.Test, error) {
	if f.testErr != nil {
		return nil, f.testErr
	}
	t, ok := f.tests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeCatalog) ListQuestions(_ context.Context, ids []int64) ([]model.Question, error) {
	f.asked = append(f.asked, ids)
	if f.questionErr != nil {
		return nil, f.questionErr
	}
	out := []model.Question{}
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// ListByIDs lets the catalog double as the stats service's question source.
func (f *fakeCatalog) ListByIDs(ctx context.Context, ids []int64) ([]model.Question, error) {
	return f.ListQuestions(ctx, ids)
}

type fakeTests struct {
	catalog *fakeCatalog
	err     error
}

func (f *fakeTests) ListByIDs(_ context.Context, ids []int64) ([]model.Test, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Test{}
	for _, id := range ids {
		if t, ok := f.catalog.tests[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeResults struct {
	mu        sync.Mutex
	rows      []model.Result
	nextID    int64
	createErr error
	listErr   error
}

func (f *fakeResults) Create(_ context.Context, res *model.Result) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	res.ID = f.nextID
	f.rows = append(f.rows, *res)
	return nil
}

func (f *fakeResults) GetByID(_ context.Context, id int64) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResults) ListByUser(_ context.Context, userID int64, limit int) ([]model.Result, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Result{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUsers struct {
	ids map[int64]bool
	err error
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.ids[id] {
		return nil, pgx.ErrNoRows
	}
	return &model.User{ID: id, Name: "learner"}, nil
}

type fakeAttempts struct {
	rows map[int64]*model.TestAttemptStats
}

func (f *fakeAttempts) GetByTest(_ context.Context, testID int64) (*model.TestAttemptStats, error) {
	s, ok := f.rows[testID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

type fakeNotifier struct {
	got []*model.Result
	err error
}

func (f *fakeNotifier) ResultGraded(_ context.Context, res *model.Result) error {
	f.got = append(f.got, res)
	return f.err
}
