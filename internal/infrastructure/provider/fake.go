package provider

import (
	"context"
	"time"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
)

// Ensure Fake implements application.QuoteSource.
var _ application.QuoteSource = (*Fake)(nil)

// Fake answers every symbol with a fixed price; the dev/bootstrap default.
type Fake struct {
	price     float64
	prevClose float64
}

func NewFake(price, prevClose float64) *Fake { return &Fake{price: price, prevClose: prevClose} }

func (f *Fake) Resolve(_ context.Context, symbol string) (domain.Quote, bool) {
	c := domain.Canonical(symbol)
	if c == "" {
		return domain.Quote{}, false
	}
	return domain.Quote{
		Symbol:    c,
		Price:     f.price,
		PrevClose: f.prevClose,
		Currency:  "INR",
		Exchange:  "FAKE",
		FetchedAt: time.Now().UTC(),
	}, true
}

func (f *Fake) ResolveBatch(ctx context.Context, symbols []string) map[string]domain.Quote {
	out := make(map[string]domain.Quote, len(symbols))
	for _, s := range domain.CanonicalSet(symbols) {
		if q, ok := f.Resolve(ctx, s); ok {
			out[s] = q
		}
	}
	return out
}
