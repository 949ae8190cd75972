package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	Storage     string
	DatabaseURL string
	// Providers
	Provider       string
	QuoteAPIBase   string
	ScrapeBase     string
	FundAPIBase    string
	MarketSuffix   string
	RequestTimeout time.Duration
	QuoteCacheTTL  time.Duration
	// Rate limiting
	RateLimit  int
	RateWindow time.Duration
	// Reconciliation
	PlaceholderEpsilon float64
	// Worker
	RefreshInterval time.Duration
	WorkerPoll      time.Duration
	WorkerBatchSize int
	// Redis (idempotency)
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisTTL       time.Duration
	IdempotencyVia string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func floatDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", "8080"),
		Storage:            getEnv("STORAGE", "pg"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Provider:           getEnv("PROVIDER", "fake"),
		QuoteAPIBase:       getEnv("QUOTE_API_BASE", "https://query1.finance.yahoo.com"),
		ScrapeBase:         getEnv("SCRAPE_BASE", "https://www.google.com/finance"),
		FundAPIBase:        getEnv("FUND_API_BASE", "https://api.mfapi.in"),
		MarketSuffix:       getEnv("MARKET_SUFFIX", ".NS"),
		RequestTimeout:     durMS("REQUEST_TIMEOUT_MS", 5000),
		QuoteCacheTTL:      durMS("QUOTE_CACHE_TTL_MS", 60000),
		RateLimit:          atoiDef(getEnv("RATE_LIMIT", "30"), 30),
		RateWindow:         durMS("RATE_WINDOW_MS", 60000),
		PlaceholderEpsilon: floatDef(getEnv("PLACEHOLDER_EPSILON", "0.01"), 0.01),
		RefreshInterval:    durMS("REFRESH_INTERVAL_MS", 300000),
		WorkerPoll:         durMS("WORKER_POLL_MS", 250),
		WorkerBatchSize:    atoiDef(getEnv("WORKER_BATCH_LIMIT", "10"), 10),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:           durMS("IDEMPOTENCY_TTL_MS", 86400000),
		IdempotencyVia:     getEnv("IDEMPOTENCY_BACKEND", "redis"),
	}
}
