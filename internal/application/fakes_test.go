package application

import (
	"context"
	"io"
	"sync"

	"github.com/coproconnect/panel/internal/domain/model"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// fakeBackend is a scriptable BackendClient. Unset functions return zero
// values; call counters are safe for concurrent use.
type fakeBackend struct {
	mu sync.Mutex

	loginFn  func(username, password string) (string, model.LoginResult, error)
	verifyFn func(username, code string) (string, error)
	pageFn   func(q model.PageQuery) (model.PagedResidents, error)
	allFn    func() ([]model.Resident, error)
	createFn func(r model.Resident) (model.Resident, error)
	updateFn func(r model.Resident) (model.Resident, error)
	deleteFn func(id string) error

	pageCalls   []model.PageQuery
	allCalls    int
	createCalls []model.Resident
	updateCalls []model.Resident
	deleteCalls []string
}

var _ driven.BackendClient = (*fakeBackend)(nil)

func (f *fakeBackend) Login(_ context.Context, username, password string) (string, model.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(username, password)
	}
	return "", model.LoginResult{}, nil
}

func (f *fakeBackend) VerifyMFA(_ context.Context, username, code string) (string, error) {
	if f.verifyFn != nil {
		return f.verifyFn(username, code)
	}
	return "", nil
}

func (f *fakeBackend) FetchResidentsPage(_ context.Context, q model.PageQuery) (model.PagedResidents, error) {
	f.mu.Lock()
	f.pageCalls = append(f.pageCalls, q)
	fn := f.pageFn
	f.mu.Unlock()

	if fn != nil {
		return fn(q)
	}
	return model.EmptyPage(), nil
}

func (f *fakeBackend) FetchAllResidents(_ context.Context) ([]model.Resident, error) {
	f.mu.Lock()
	f.allCalls++
	fn := f.allFn
	f.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return []model.Resident{}, nil
}

func (f *fakeBackend) FetchStatistics(_ context.Context) (model.Statistics, error) {
	return model.Statistics{}, nil
}

func (f *fakeBackend) FetchApartmentHistory(_ context.Context, _, _, _ string) ([]model.HistoryEntry, error) {
	return []model.HistoryEntry{}, nil
}

func (f *fakeBackend) CreateResident(_ context.Context, r model.Resident) (model.Resident, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, r)
	fn := f.createFn
	f.mu.Unlock()

	if fn != nil {
		return fn(r)
	}
	return r, nil
}

func (f *fakeBackend) UpdateResident(_ context.Context, r model.Resident) (model.Resident, error) {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, r)
	fn := f.updateFn
	f.mu.Unlock()

	if fn != nil {
		return fn(r)
	}
	return r, nil
}

func (f *fakeBackend) DeleteResident(_ context.Context, id string) error {
	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, id)
	fn := f.deleteFn
	f.mu.Unlock()

	if fn != nil {
		return fn(id)
	}
	return nil
}

func (f *fakeBackend) ExportPDF(_ context.Context, _ driven.ExportKind, _ io.Writer) error {
	return nil
}

func (f *fakeBackend) pageCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pageCalls)
}

func (f *fakeBackend) lastPageCall() model.PageQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCalls[len(f.pageCalls)-1]
}
