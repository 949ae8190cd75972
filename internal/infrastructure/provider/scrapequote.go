package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-service/internal/domain"
	"portfolio-service/internal/infrastructure/httpx"
	"portfolio-service/internal/infrastructure/scrape"
)

// DefaultVenues is the fixed venue order for the scrape fallback: the primary
// market first, then the secondary listing of the same symbol.
var DefaultVenues = []string{"NSE", "BSE"}

// ScrapeQuote is the last rung of the chain: it pulls the quote page of a
// scrape-only provider and runs the extraction heuristics over it, one venue
// after another. Structural drift upstream degrades this to "no data",
// never to garbage.
type ScrapeQuote struct {
	BaseURL string
	Venues  []string
	Client  *httpx.Client
}

var _ Resolver = (*ScrapeQuote)(nil)

func (p *ScrapeQuote) Name() string { return "scrape" }

func (p *ScrapeQuote) Resolve(ctx context.Context, wireSymbol string) (domain.Quote, error) {
	if p.BaseURL == "" {
		return domain.Quote{}, errors.New("scrape: missing configuration")
	}
	venues := p.Venues
	if len(venues) == 0 {
		venues = DefaultVenues
	}
	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}

	canon := domain.Canonical(wireSymbol)
	var lastErr error
	for _, venue := range venues {
		page, err := client.GetText(ctx, fmt.Sprintf("%s/quote/%s:%s", p.BaseURL, canon, venue))
		if err != nil {
			lastErr = fmt.Errorf("scrape %s:%s: %w", canon, venue, err)
			continue
		}
		ext, ok := scrape.Parse(page)
		if !ok {
			lastErr = fmt.Errorf("scrape %s:%s: no price found", canon, venue)
			continue
		}
		return domain.Quote{
			Symbol:    canon,
			Price:     ext.Price,
			PrevClose: ext.PrevClose,
			Exchange:  venue,
			FetchedAt: time.Now().UTC(),
		}, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("scrape: no venues configured")
	}
	return domain.Quote{}, lastErr
}
