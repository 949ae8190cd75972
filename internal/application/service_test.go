package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"portfolio-service/internal/domain"
)

func newTestService(holdings *fakeHoldingRepo, jobs *fakeJobRepo, src QuoteSource, idem IdempotencyStore) *PortfolioService {
	sources := map[domain.AssetClass]QuoteSource{domain.ClassStock: src}
	return NewPortfolioService(holdings, jobs, sources, idem)
}

func Test_Quotes_CanonicalizesAndBatches(t *testing.T) {
	t.Parallel()
	src := &fakeSource{quotes: map[string]domain.Quote{
		"RELIANCE": {Symbol: "RELIANCE", Price: 2800},
	}}
	svc := newTestService(&fakeHoldingRepo{}, newFakeJobRepo(), src, nil)

	out, err := svc.Quotes(context.Background(), []string{"reliance.NS", "RELIANCE", "TCS.BO"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 2800.0, out["RELIANCE"].Price)
	// duplicates collapse to one batch entry
	require.Equal(t, [][]string{{"RELIANCE", "TCS"}}, src.batches)
}

func Test_Quotes_RejectsEmptyAndInvalid(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeHoldingRepo{}, newFakeJobRepo(), &fakeSource{}, nil)

	_, err := svc.Quotes(context.Background(), nil)
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Quotes(context.Background(), []string{"bad symbol!"})
	require.ErrorIs(t, err, ErrBadRequest)
}

func Test_RequestRefresh_DuplicateKeyConflicts(t *testing.T) {
	t.Parallel()
	jobs := newFakeJobRepo()
	svc := newTestService(&fakeHoldingRepo{}, jobs, &fakeSource{}, &fakeIdem{})

	key := "req-1"
	id, err := svc.RequestRefresh(context.Background(), domain.ClassStock, &key)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = svc.RequestRefresh(context.Background(), domain.ClassStock, &key)
	require.ErrorIs(t, err, ErrConflict)
}

func Test_RequestRefresh_UnsupportedClass(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeHoldingRepo{}, newFakeJobRepo(), &fakeSource{}, nil)

	_, err := svc.RequestRefresh(context.Background(), domain.ClassFund, nil)
	require.ErrorIs(t, err, domain.ErrUnsupportedClass)
}

func Test_RefreshClass_PersistsDirtyOnly(t *testing.T) {
	t.Parallel()
	holdings := &fakeHoldingRepo{byClass: map[domain.AssetClass][]domain.Holding{
		domain.ClassStock: {
			{Identifier: "RELIANCE", Class: domain.ClassStock, Quantity: 10, InvestmentAmount: 1000},
			{Identifier: "NODATA", Class: domain.ClassStock, Quantity: 1},
		},
	}}
	src := &fakeSource{quotes: map[string]domain.Quote{
		"RELIANCE": {Symbol: "RELIANCE", Price: 120, PrevClose: 118},
	}}
	svc := newTestService(holdings, newFakeJobRepo(), src, nil)

	res, err := svc.RefreshClass(context.Background(), domain.ClassStock)
	require.NoError(t, err)
	require.Equal(t, 1, res.Matched)
	require.Len(t, holdings.updated, 1)
	require.Equal(t, "RELIANCE", holdings.updated[0].Identifier)
	require.Equal(t, 1200.0, holdings.updated[0].CurrentValue)
}

func Test_RefreshClass_WriteFailureDoesNotAbort(t *testing.T) {
	t.Parallel()
	holdings := &fakeHoldingRepo{
		byClass: map[domain.AssetClass][]domain.Holding{
			domain.ClassStock: {
				{Identifier: "AAA", Class: domain.ClassStock, Quantity: 1},
				{Identifier: "BBB", Class: domain.ClassStock, Quantity: 1},
			},
		},
		updateErr: map[string]error{"AAA": errBoom},
	}
	src := &fakeSource{quotes: map[string]domain.Quote{
		"AAA": {Symbol: "AAA", Price: 10, PrevClose: 9},
		"BBB": {Symbol: "BBB", Price: 20, PrevClose: 19},
	}}
	svc := newTestService(holdings, newFakeJobRepo(), src, nil)

	res, err := svc.RefreshClass(context.Background(), domain.ClassStock)
	require.NoError(t, err)
	require.Len(t, res.Dirty, 2)
	require.Len(t, holdings.updated, 1)
	require.Equal(t, "BBB", holdings.updated[0].Identifier)
}

func Test_RefreshClass_ListErrorPropagates(t *testing.T) {
	t.Parallel()
	holdings := &fakeHoldingRepo{listErr: errBoom}
	svc := newTestService(holdings, newFakeJobRepo(), &fakeSource{}, nil)

	_, err := svc.RefreshClass(context.Background(), domain.ClassStock)
	require.ErrorIs(t, err, errBoom)
}

func Test_RefreshAll_SkipsMissingSources(t *testing.T) {
	t.Parallel()
	holdings := &fakeHoldingRepo{byClass: map[domain.AssetClass][]domain.Holding{
		domain.ClassStock: {{Identifier: "XYZ", Class: domain.ClassStock, Quantity: 1}},
	}}
	src := &fakeSource{quotes: map[string]domain.Quote{
		"XYZ": {Symbol: "XYZ", Price: 5, PrevClose: 4},
	}}
	svc := newTestService(holdings, newFakeJobRepo(), src, nil)

	// fund and bond sources absent; must not panic or error
	svc.RefreshAll(context.Background())
	require.Len(t, holdings.updated, 1)
}
