package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portfolio-service/internal/domain"
)

// PortfolioService orchestrates quote resolution and reconciliation across
// asset classes. Each class resolves through its own QuoteSource because the
// identifier schemes differ (ticker, scheme code, ISIN).
type PortfolioService struct {
	holdings HoldingRepo
	jobs     RefreshJobRepo
	sources  map[domain.AssetClass]QuoteSource
	rec      *Reconciler
	idem     IdempotencyStore
	clock    Clock
	log      *zap.Logger
}

type Option func(*PortfolioService)

func WithClock(c Clock) Option          { return func(s *PortfolioService) { s.clock = c } }
func WithLogger(l *zap.Logger) Option   { return func(s *PortfolioService) { s.log = l } }
func WithReconciler(r *Reconciler) Option {
	return func(s *PortfolioService) { s.rec = r }
}

func NewPortfolioService(holdings HoldingRepo, jobs RefreshJobRepo, sources map[domain.AssetClass]QuoteSource, idem IdempotencyStore, opts ...Option) *PortfolioService {
	s := &PortfolioService{
		holdings: holdings,
		jobs:     jobs,
		sources:  sources,
		idem:     idem,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.rec == nil {
		s.rec = NewReconciler(DefaultPlaceholderEpsilon)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.idem == nil {
		s.idem = NoopIdempotency{}
	}
	return s
}

// Quotes resolves a set of equity symbols. Unresolvable symbols are simply
// absent from the returned map.
func (s *PortfolioService) Quotes(ctx context.Context, symbols []string) (map[string]domain.Quote, error) {
	canon := domain.CanonicalSet(symbols)
	if len(canon) == 0 {
		return nil, ErrBadRequest
	}
	for _, c := range canon {
		if !domain.ValidIdentifier(c) {
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, c)
		}
	}
	src, ok := s.sources[domain.ClassStock]
	if !ok {
		return nil, domain.ErrUnsupportedClass
	}
	return src.ResolveBatch(ctx, canon), nil
}

func (s *PortfolioService) Holdings(ctx context.Context, class domain.AssetClass) ([]domain.Holding, error) {
	return s.holdings.ListByClass(ctx, class)
}

// RequestRefresh enqueues a refresh job for one asset class. A duplicate
// idempotency key yields ErrConflict.
func (s *PortfolioService) RequestRefresh(ctx context.Context, class domain.AssetClass, idemKey *string) (string, error) {
	if _, ok := s.sources[class]; !ok {
		return "", domain.ErrUnsupportedClass
	}
	if idemKey != nil && *idemKey != "" {
		ok, err := s.idem.TryReserve(ctx, "refresh:"+string(class)+":"+*idemKey)
		if err != nil {
			return "", fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !ok {
			return "", ErrConflict
		}
	}
	return s.jobs.CreateQueued(ctx, class)
}

func (s *PortfolioService) GetRefresh(ctx context.Context, id string) (domain.RefreshJob, error) {
	return s.jobs.GetByID(ctx, id)
}

// RefreshClass fetches quotes for every holding of the class, reconciles them
// into the snapshot and persists the changed valuations. Persistence failures
// are logged per holding, never retried here; the snapshot already carries
// the new values so the next successful write converges.
func (s *PortfolioService) RefreshClass(ctx context.Context, class domain.AssetClass) (ReconcileResult, error) {
	src, ok := s.sources[class]
	if !ok {
		return ReconcileResult{}, domain.ErrUnsupportedClass
	}
	hs, err := s.holdings.ListByClass(ctx, class)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list %s holdings: %w", class, err)
	}
	if len(hs) == 0 {
		return ReconcileResult{}, nil
	}

	ids := make([]string, 0, len(hs))
	for _, h := range hs {
		ids = append(ids, h.Identifier)
	}
	quotes := src.ResolveBatch(ctx, ids)

	res := s.rec.Reconcile(hs, quotes)
	for _, h := range res.Dirty {
		if err := s.holdings.UpdateValuation(ctx, h); err != nil {
			s.log.Warn("valuation_write_failed",
				zap.String("identifier", h.Identifier),
				zap.String("class", string(class)),
				zap.Float64("current_price", h.CurrentPrice),
				zap.Error(err),
			)
		}
	}
	s.log.Info("class_reconciled",
		zap.String("class", string(class)),
		zap.Int("holdings", len(hs)),
		zap.Int("matched", res.Matched),
		zap.Int("written", len(res.Dirty)),
	)
	return res, nil
}

// RefreshAll reconciles every asset class independently. A class failing to
// list its holdings does not stop the others.
func (s *PortfolioService) RefreshAll(ctx context.Context) {
	for _, class := range domain.AllClasses {
		if _, ok := s.sources[class]; !ok {
			continue
		}
		if _, err := s.RefreshClass(ctx, class); err != nil {
			s.log.Warn("class_refresh_failed", zap.String("class", string(class)), zap.Error(err))
		}
	}
}
