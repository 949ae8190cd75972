package application

import (
	"context"
	"time"

	"portfolio-service/internal/domain"
)

// QuoteSource resolves identifiers to quotes. A miss is an absence, never an
// error: providers being down, blocked or unparseable all collapse to
// "no data" and the caller keeps the last known value.
type QuoteSource interface {
	Resolve(ctx context.Context, symbol string) (domain.Quote, bool)
	ResolveBatch(ctx context.Context, symbols []string) map[string]domain.Quote
}

type HoldingRepo interface {
	ListByClass(ctx context.Context, class domain.AssetClass) ([]domain.Holding, error)
	// UpdateValuation persists the price/valuation fields of one holding.
	UpdateValuation(ctx context.Context, h domain.Holding) error
}

type RefreshJobRepo interface {
	CreateQueued(ctx context.Context, class domain.AssetClass) (string, error)
	GetByID(ctx context.Context, id string) (domain.RefreshJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.RefreshStatus, errMsg *string) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.RefreshJob, error)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
