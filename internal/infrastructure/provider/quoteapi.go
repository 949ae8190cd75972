package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio-service/internal/domain"
	"portfolio-service/internal/infrastructure/httpx"
)

const quoteAPIPath = "/v7/finance/quote"

// QuoteAPI is the primary structured provider: a bulk quote endpoint that
// answers many symbols in one round trip.
type QuoteAPI struct {
	BaseURL string
	Client  *httpx.Client
}

var _ BulkResolver = (*QuoteAPI)(nil)

type quoteAPIResp struct {
	QuoteResponse struct {
		Result []struct {
			Symbol           string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			PreviousClose    float64 `json:"regularMarketPreviousClose"`
			Currency         string  `json:"currency"`
			FullExchangeName string  `json:"fullExchangeName"`
			ShortName        string  `json:"shortName"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

func (p *QuoteAPI) Name() string { return "quoteapi" }

func (p *QuoteAPI) Resolve(ctx context.Context, wireSymbol string) (domain.Quote, error) {
	m, err := p.ResolveBulk(ctx, []string{wireSymbol})
	if err != nil {
		return domain.Quote{}, err
	}
	q, ok := m[wireSymbol]
	if !ok {
		return domain.Quote{}, fmt.Errorf("quoteapi: no data for %s", wireSymbol)
	}
	return q, nil
}

func (p *QuoteAPI) ResolveBulk(ctx context.Context, wireSymbols []string) (map[string]domain.Quote, error) {
	if p.BaseURL == "" {
		return nil, errors.New("quoteapi: missing configuration")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("quoteapi: invalid base url: %w", err)
	}
	u.Path = quoteAPIPath
	q := u.Query()
	q.Set("symbols", strings.Join(wireSymbols, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("quoteapi: create request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body quoteAPIResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return nil, fmt.Errorf("quoteapi: %w", err)
	}
	if body.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quoteapi: upstream error: %v", body.QuoteResponse.Error)
	}

	out := make(map[string]domain.Quote, len(body.QuoteResponse.Result))
	for _, r := range body.QuoteResponse.Result {
		if r.Symbol == "" || r.RegularMarketPrice <= 0 {
			continue
		}
		out[r.Symbol] = domain.Quote{
			Symbol:      r.Symbol,
			Price:       r.RegularMarketPrice,
			PrevClose:   r.PreviousClose,
			Currency:    r.Currency,
			Exchange:    r.FullExchangeName,
			DisplayName: r.ShortName,
			FetchedAt:   time.Now().UTC(),
		}
	}
	return out, nil
}
