package httpserver

import (
	"context"
	"sync"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
)

var _ application.HoldingRepo = (*fakeHoldingRepo)(nil)
var _ application.RefreshJobRepo = (*fakeJobRepo)(nil)
var _ application.QuoteSource = (*fakeSource)(nil)

type fakeHoldingRepo struct {
	byClass map[domain.AssetClass][]domain.Holding
}

func (f *fakeHoldingRepo) ListByClass(_ context.Context, class domain.AssetClass) ([]domain.Holding, error) {
	return f.byClass[class], nil
}

func (f *fakeHoldingRepo) UpdateValuation(_ context.Context, _ domain.Holding) error { return nil }

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]domain.RefreshJob
	seq  int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]domain.RefreshJob)}
}

func (f *fakeJobRepo) CreateQueued(_ context.Context, class domain.AssetClass) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := "job-" + string(rune('0'+f.seq))
	f.jobs[id] = domain.RefreshJob{ID: id, Class: class, Status: domain.RefreshStatusQueued}
	return id, nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id string) (domain.RefreshJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return domain.RefreshJob{}, application.ErrNotFound
	}
	return j, nil
}

func (f *fakeJobRepo) UpdateStatus(_ context.Context, id string, status domain.RefreshStatus, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	j.Status = status
	j.Error = errMsg
	f.jobs[id] = j
	return nil
}

func (f *fakeJobRepo) ClaimQueued(_ context.Context, _ int) ([]domain.RefreshJob, error) {
	return nil, nil
}

type fakeSource struct {
	quotes map[string]domain.Quote
}

func (f *fakeSource) Resolve(_ context.Context, symbol string) (domain.Quote, bool) {
	q, ok := f.quotes[domain.Canonical(symbol)]
	return q, ok
}

func (f *fakeSource) ResolveBatch(_ context.Context, symbols []string) map[string]domain.Quote {
	out := make(map[string]domain.Quote)
	for _, s := range symbols {
		c := domain.Canonical(s)
		if q, ok := f.quotes[c]; ok {
			out[c] = q
		}
	}
	return out
}
