package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"portfolio-service/internal/domain"
)

var _ HoldingRepo = (*fakeHoldingRepo)(nil)
var _ RefreshJobRepo = (*fakeJobRepo)(nil)
var _ QuoteSource = (*fakeSource)(nil)
var _ IdempotencyStore = (*fakeIdem)(nil)

type fakeHoldingRepo struct {
	mu        sync.Mutex
	byClass   map[domain.AssetClass][]domain.Holding
	updated   []domain.Holding
	listErr   error
	updateErr map[string]error
}

func (f *fakeHoldingRepo) ListByClass(_ context.Context, class domain.AssetClass) ([]domain.Holding, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byClass[class], nil
}

func (f *fakeHoldingRepo) UpdateValuation(_ context.Context, h domain.Holding) error {
	if err := f.updateErr[h.Identifier]; err != nil {
		return err
	}
	f.mu.Lock()
	f.updated = append(f.updated, h)
	f.mu.Unlock()
	return nil
}

type fakeJobRepo struct {
	mu       sync.Mutex
	jobs     map[string]domain.RefreshJob
	nextID   int
	statuses []domain.RefreshStatus
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]domain.RefreshJob)}
}

func (f *fakeJobRepo) CreateQueued(_ context.Context, class domain.AssetClass) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := string(rune('a' + f.nextID - 1))
	f.jobs[id] = domain.RefreshJob{ID: id, Class: class, Status: domain.RefreshStatusQueued}
	return id, nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id string) (domain.RefreshJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return domain.RefreshJob{}, ErrNotFound
	}
	return j, nil
}

func (f *fakeJobRepo) UpdateStatus(_ context.Context, id string, status domain.RefreshStatus, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = status
	j.Error = errMsg
	f.jobs[id] = j
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeJobRepo) ClaimQueued(_ context.Context, limit int) ([]domain.RefreshJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RefreshJob
	for id, j := range f.jobs {
		if len(out) == limit {
			break
		}
		if j.Status == domain.RefreshStatusQueued {
			j.Status = domain.RefreshStatusProcessing
			f.jobs[id] = j
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeSource struct {
	quotes  map[string]domain.Quote
	batches [][]string
}

func (f *fakeSource) Resolve(_ context.Context, symbol string) (domain.Quote, bool) {
	q, ok := f.quotes[domain.Canonical(symbol)]
	return q, ok
}

func (f *fakeSource) ResolveBatch(_ context.Context, symbols []string) map[string]domain.Quote {
	f.batches = append(f.batches, symbols)
	out := make(map[string]domain.Quote)
	for _, s := range symbols {
		c := domain.Canonical(s)
		if q, ok := f.quotes[c]; ok {
			out[c] = q
		}
	}
	return out
}

type fakeIdem struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (f *fakeIdem) TryReserve(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var errBoom = errors.New("boom")
