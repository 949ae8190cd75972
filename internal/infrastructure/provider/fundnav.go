package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
	"portfolio-service/internal/infrastructure/httpx"
	"portfolio-service/internal/infrastructure/memcache"
	"portfolio-service/internal/infrastructure/scrape"
)

// FundNAV resolves mutual-fund scheme codes against a structured NAV
// endpoint. The latest NAV becomes the price and the one before it the
// previous close, so the day-over-day change survives reconciliation.
type FundNAV struct {
	BaseURL  string
	Client   *httpx.Client
	Cache    *memcache.Cache
	CacheTTL time.Duration
	Timeout  time.Duration
	Log      *zap.Logger
}

var _ application.QuoteSource = (*FundNAV)(nil)

type fundNAVResp struct {
	Meta struct {
		SchemeName string `json:"scheme_name"`
		SchemeCode any    `json:"scheme_code"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		NAV  string `json:"nav"`
	} `json:"data"`
	Status string `json:"status"`
}

func (p *FundNAV) Resolve(ctx context.Context, schemeCode string) (domain.Quote, bool) {
	code := domain.Canonical(schemeCode)
	if code == "" {
		return domain.Quote{}, false
	}
	if p.Cache != nil {
		if v, ok := p.Cache.Get(memcache.Key(memcache.PurposeNAV, "fundnav", code)); ok {
			if q, ok := v.(domain.Quote); ok {
				return q, true
			}
		}
	}
	q, err := p.fetch(ctx, code)
	if err != nil {
		p.logger().Debug("fund_nav_miss", zap.String("scheme", code), zap.Error(err))
		return domain.Quote{}, false
	}
	if p.Cache != nil {
		ttl := p.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		p.Cache.Set(memcache.Key(memcache.PurposeNAV, "fundnav", code), q, ttl)
	}
	return q, true
}

// ResolveBatch fans out one fetch per scheme code and settles all of them;
// a failed scheme is simply absent from the result.
func (p *FundNAV) ResolveBatch(ctx context.Context, schemeCodes []string) map[string]domain.Quote {
	out := make(map[string]domain.Quote)
	var mu sync.Mutex
	var g errgroup.Group
	for _, code := range domain.CanonicalSet(schemeCodes) {
		code := code
		g.Go(func() error {
			timeout := p.Timeout
			if timeout <= 0 {
				timeout = DefaultTimeout
			}
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if q, ok := p.Resolve(cctx, code); ok {
				mu.Lock()
				out[code] = q
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *FundNAV) fetch(ctx context.Context, code string) (domain.Quote, error) {
	if p.BaseURL == "" {
		return domain.Quote{}, errors.New("fundnav: missing configuration")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/mf/"+code, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("fundnav: create request: %w", err)
	}
	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body fundNAVResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return domain.Quote{}, fmt.Errorf("fundnav: %w", err)
	}
	if len(body.Data) == 0 {
		return domain.Quote{}, fmt.Errorf("fundnav: no NAV data for %s", code)
	}

	// NAVs arrive newest-first as strings; some carry separators.
	nav, ok := scrape.ParseNumber(body.Data[0].NAV)
	if !ok {
		return domain.Quote{}, fmt.Errorf("fundnav: unparseable NAV %q for %s", body.Data[0].NAV, code)
	}
	prev := nav
	if len(body.Data) > 1 {
		if p2, ok := scrape.ParseNumber(body.Data[1].NAV); ok {
			prev = p2
		}
	}
	return domain.Quote{
		Symbol:      code,
		Price:       nav,
		PrevClose:   prev,
		Currency:    "INR",
		Exchange:    "MF",
		DisplayName: body.Meta.SchemeName,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

func (p *FundNAV) logger() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}
