package provider

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
	"portfolio-service/internal/infrastructure/memcache"
)

// Resolver is one homogeneous unit of the fallback chain: given a wire
// symbol (canonical + market suffix), produce a quote or an error. Errors
// stay inside the chain; callers only ever see presence or absence.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, wireSymbol string) (domain.Quote, error)
}

// BulkResolver additionally answers many symbols in one round trip.
type BulkResolver interface {
	Resolver
	ResolveBulk(ctx context.Context, wireSymbols []string) (map[string]domain.Quote, error)
}

const (
	DefaultTimeout  = 5 * time.Second
	DefaultCacheTTL = time.Minute
)

// Chain tries resolvers in fixed order per symbol and fans out batches.
// Order is data, not control flow: reordering providers is a slice edit.
type Chain struct {
	resolvers []Resolver
	cache     *memcache.Cache
	suffix    string
	timeout   time.Duration
	cacheTTL  time.Duration
	log       *zap.Logger
}

var _ application.QuoteSource = (*Chain)(nil)

type ChainOption func(*Chain)

func WithCache(c *memcache.Cache, ttl time.Duration) ChainOption {
	return func(ch *Chain) {
		ch.cache = c
		if ttl > 0 {
			ch.cacheTTL = ttl
		}
	}
}

func WithTimeout(d time.Duration) ChainOption {
	return func(ch *Chain) {
		if d > 0 {
			ch.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) ChainOption { return func(ch *Chain) { ch.log = l } }

// WithDefaultSuffix sets the market suffix appended to bare symbols for
// structured-endpoint calls.
func WithDefaultSuffix(s string) ChainOption { return func(ch *Chain) { ch.suffix = s } }

func NewChain(resolvers []Resolver, opts ...ChainOption) *Chain {
	ch := &Chain{
		resolvers: resolvers,
		suffix:    domain.SuffixNSE,
		timeout:   DefaultTimeout,
		cacheTTL:  DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(ch)
	}
	if ch.log == nil {
		ch.log = zap.NewNop()
	}
	return ch
}

// Resolve answers one symbol through the fallback chain, consulting the
// cache first. A false return means every path failed; that is "skip this
// holding, keep last known price", never a fatal condition.
func (ch *Chain) Resolve(ctx context.Context, symbol string) (domain.Quote, bool) {
	canon := domain.Canonical(symbol)
	if canon == "" {
		return domain.Quote{}, false
	}
	if q, ok := ch.cached(canon); ok {
		return q, true
	}
	return ch.resolveWire(ctx, canon, domain.WireSymbol(symbol, ch.suffix))
}

func (ch *Chain) resolveWire(ctx context.Context, canon, wire string) (domain.Quote, bool) {
	for _, r := range ch.resolvers {
		q, err := ch.resolveOne(ctx, r, wire)
		if err != nil {
			ch.log.Debug("resolver_miss",
				zap.String("resolver", r.Name()),
				zap.String("symbol", canon),
				zap.Error(err),
			)
			continue
		}
		if !q.Usable() {
			continue
		}
		q.Symbol = canon
		ch.store(canon, q)
		return q, true
	}
	return domain.Quote{}, false
}

func (ch *Chain) resolveOne(ctx context.Context, r Resolver, wire string) (domain.Quote, error) {
	cctx, cancel := context.WithTimeout(ctx, ch.timeout)
	defer cancel()
	return r.Resolve(cctx, wire)
}

// ResolveBatch answers many symbols: one bulk structured call per market
// suffix group, then a concurrent per-symbol fallback for the leftovers.
// Settle all, tolerate individual failure; a missing symbol is simply absent.
func (ch *Chain) ResolveBatch(ctx context.Context, symbols []string) map[string]domain.Quote {
	out := make(map[string]domain.Quote)
	if len(symbols) == 0 {
		return out
	}

	// Upper-case and de-duplicate before any network call, remembering the
	// suffix each raw symbol carried for the wire-format grouping.
	groups := make(map[string][]string)
	pending := make([]string, 0, len(symbols))
	wires := make(map[string]string, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		canon := domain.Canonical(s)
		if canon == "" {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		if q, ok := ch.cached(canon); ok {
			out[canon] = q
			continue
		}
		suffix := domain.MarketSuffix(s)
		if suffix == "" {
			suffix = ch.suffix
		}
		groups[suffix] = append(groups[suffix], canon+suffix)
		wires[canon] = canon + suffix
		pending = append(pending, canon)
	}
	if len(pending) == 0 {
		return out
	}

	var mu sync.Mutex
	for _, r := range ch.resolvers {
		br, ok := r.(BulkResolver)
		if !ok {
			continue
		}
		for suffix, wires := range groups {
			bctx, cancel := context.WithTimeout(ctx, ch.timeout)
			bulk, err := br.ResolveBulk(bctx, wires)
			cancel()
			if err != nil {
				ch.log.Debug("bulk_miss",
					zap.String("resolver", br.Name()),
					zap.String("suffix", suffix),
					zap.Int("symbols", len(wires)),
					zap.Error(err),
				)
				continue
			}
			for sym, q := range bulk {
				canon := domain.Canonical(sym)
				if !q.Usable() {
					continue
				}
				q.Symbol = canon
				mu.Lock()
				out[canon] = q
				mu.Unlock()
				ch.store(canon, q)
			}
		}
		break // only the first bulk-capable resolver gets the batch shot
	}

	// Individual fallback for whatever the bulk pass left unresolved. The
	// group is unbounded on purpose: batches are small, and errgroup only
	// joins — resolver misses never cancel siblings.
	var g errgroup.Group
	for _, canon := range pending {
		mu.Lock()
		_, done := out[canon]
		mu.Unlock()
		if done {
			continue
		}
		canon := canon
		g.Go(func() error {
			if q, ok := ch.resolveWire(ctx, canon, wires[canon]); ok {
				mu.Lock()
				out[canon] = q
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (ch *Chain) cached(canon string) (domain.Quote, bool) {
	if ch.cache == nil {
		return domain.Quote{}, false
	}
	v, ok := ch.cache.Get(memcache.Key(memcache.PurposeQuote, "chain", canon))
	if !ok {
		return domain.Quote{}, false
	}
	q, ok := v.(domain.Quote)
	return q, ok
}

func (ch *Chain) store(canon string, q domain.Quote) {
	if ch.cache == nil {
		return
	}
	ch.cache.Set(memcache.Key(memcache.PurposeQuote, "chain", canon), q, ch.cacheTTL)
}
