package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"portfolio-service/internal/application"
	"portfolio-service/internal/config"
	"portfolio-service/internal/domain"
	"portfolio-service/internal/infrastructure/httpx"
	"portfolio-service/internal/infrastructure/logx"
	"portfolio-service/internal/infrastructure/memcache"
	"portfolio-service/internal/infrastructure/pg"
	"portfolio-service/internal/infrastructure/provider"
	"portfolio-service/internal/infrastructure/ratelimit"
	redisstore "portfolio-service/internal/infrastructure/redis"
	"portfolio-service/internal/infrastructure/worker"
)

type Repos struct {
	Holdings application.HoldingRepo
	Jobs     application.RefreshJobRepo
	DB       *pg.DB
}

type Services struct {
	Idem application.IdempotencyStore
}

// BuildRepos builds repositories based on cfg.Storage ("pg" expected).
func BuildRepos(ctx context.Context, cfg config.Config) (Repos, func(), error) {
	log := logx.L()
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Repos{}, func() {}, fmt.Errorf("DATABASE_URL is required for STORAGE=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Repos{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Repos{}, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Repos{
			Holdings: pg.NewHoldingRepo(db),
			Jobs:     pg.NewRefreshJobRepo(db),
			DB:       db,
		}, cleanup, nil
	default:
		return Repos{}, func() {}, fmt.Errorf("unsupported STORAGE=%q; set STORAGE=pg", cfg.Storage)
	}
}

// BuildRedis builds the idempotency store if enabled (defaults to redis;
// falls back to Noop).
func BuildRedis(cfg config.Config) (Services, func(), error) {
	if cfg.IdempotencyVia != "redis" {
		return Services{Idem: application.NoopIdempotency{}}, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := redisstore.New(rdb, cfg.RedisTTL)
	cleanup := func() { _ = rdb.Close() }
	return Services{Idem: store}, cleanup, nil
}

// BuildQuoteSources wires one source per asset class. Stocks run the full
// structured-then-scrape chain, funds hit the NAV endpoint, bonds go straight
// to the scrape fallback with their ISIN as the key.
func BuildQuoteSources(cfg config.Config, cache *memcache.Cache) map[domain.AssetClass]application.QuoteSource {
	log := logx.L()
	if cfg.Provider == "fake" {
		fake := provider.NewFake(100.0, 99.0)
		return map[domain.AssetClass]application.QuoteSource{
			domain.ClassStock: fake,
			domain.ClassFund:  fake,
			domain.ClassBond:  fake,
		}
	}

	client := &httpx.Client{HTTP: &http.Client{Timeout: cfg.RequestTimeout}}
	scrapeResolver := &provider.ScrapeQuote{BaseURL: cfg.ScrapeBase, Client: client}

	stockChain := provider.NewChain(
		[]provider.Resolver{
			&provider.QuoteAPI{BaseURL: cfg.QuoteAPIBase, Client: client},
			&provider.ChartAPI{BaseURL: cfg.QuoteAPIBase, Client: client},
			scrapeResolver,
		},
		provider.WithCache(cache, cfg.QuoteCacheTTL),
		provider.WithTimeout(cfg.RequestTimeout),
		provider.WithDefaultSuffix(cfg.MarketSuffix),
		provider.WithLogger(log),
	)
	bondChain := provider.NewChain(
		[]provider.Resolver{scrapeResolver},
		provider.WithCache(cache, cfg.QuoteCacheTTL),
		provider.WithTimeout(cfg.RequestTimeout),
		provider.WithDefaultSuffix(""),
		provider.WithLogger(log),
	)
	fundSource := &provider.FundNAV{
		BaseURL:  cfg.FundAPIBase,
		Client:   client,
		Cache:    cache,
		CacheTTL: cfg.QuoteCacheTTL,
		Timeout:  cfg.RequestTimeout,
		Log:      log,
	}

	return map[domain.AssetClass]application.QuoteSource{
		domain.ClassStock: stockChain,
		domain.ClassFund:  fundSource,
		domain.ClassBond:  bondChain,
	}
}

func BuildService(cfg config.Config, repos Repos, services Services, sources map[domain.AssetClass]application.QuoteSource) *application.PortfolioService {
	return application.NewPortfolioService(
		repos.Holdings,
		repos.Jobs,
		sources,
		services.Idem,
		application.WithReconciler(application.NewReconciler(cfg.PlaceholderEpsilon)),
		application.WithLogger(logx.L()),
	)
}

func BuildLimiter(cfg config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit, cfg.RateWindow)
}

// BuildWorkers returns the background processors: the fixed-interval
// refresher and the manual-job drain.
func BuildWorkers(cfg config.Config, svc *application.PortfolioService, repos Repos) []application.Worker {
	log := logx.L()
	return []application.Worker{
		&worker.Refresher{Svc: svc, Interval: cfg.RefreshInterval, Log: log},
		&worker.JobWorker{
			Jobs:       repos.Jobs,
			Svc:        svc,
			PollEvery:  cfg.WorkerPoll,
			BatchLimit: cfg.WorkerBatchSize,
			Log:        log,
		},
	}
}
