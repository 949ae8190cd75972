package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"portfolio-service/internal/domain"
	"portfolio-service/internal/infrastructure/httpx"
)

// ChartAPI is the secondary structured provider: a per-symbol chart-metadata
// endpoint on a different path, useful when the bulk endpoint is shedding
// load or blocking.
type ChartAPI struct {
	BaseURL string
	Client  *httpx.Client
}

var _ Resolver = (*ChartAPI)(nil)

type chartAPIResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				Currency           string  `json:"currency"`
				ExchangeName       string  `json:"exchangeName"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

func (p *ChartAPI) Name() string { return "chartapi" }

func (p *ChartAPI) Resolve(ctx context.Context, wireSymbol string) (domain.Quote, error) {
	if p.BaseURL == "" {
		return domain.Quote{}, errors.New("chartapi: missing configuration")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("chartapi: invalid base url: %w", err)
	}
	u.Path = "/v8/finance/chart/" + wireSymbol
	q := u.Query()
	q.Set("interval", "1d")
	q.Set("range", "1d")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("chartapi: create request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body chartAPIResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return domain.Quote{}, fmt.Errorf("chartapi: %w", err)
	}
	if body.Chart.Error != nil {
		return domain.Quote{}, fmt.Errorf("chartapi: upstream error: %v", body.Chart.Error)
	}
	if len(body.Chart.Result) == 0 {
		return domain.Quote{}, fmt.Errorf("chartapi: no data for %s", wireSymbol)
	}

	meta := body.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return domain.Quote{}, fmt.Errorf("chartapi: empty price for %s", wireSymbol)
	}
	return domain.Quote{
		Symbol:    meta.Symbol,
		Price:     meta.RegularMarketPrice,
		PrevClose: meta.ChartPreviousClose,
		Currency:  meta.Currency,
		Exchange:  meta.ExchangeName,
		FetchedAt: time.Now().UTC(),
	}, nil
}
