package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"portfolio-service/internal/bootstrap"
	"portfolio-service/internal/config"
	"portfolio-service/internal/infrastructure/logx"
	"portfolio-service/internal/infrastructure/memcache"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		log.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	services, closeRedis, err := bootstrap.BuildRedis(cfg)
	if err != nil {
		log.Fatal("bootstrap redis", zap.Error(err))
	}
	defer closeRedis()

	sources := bootstrap.BuildQuoteSources(cfg, memcache.New())
	svc := bootstrap.BuildService(cfg, repos, services, sources)
	workers := bootstrap.BuildWorkers(cfg, svc, repos)

	var wg sync.WaitGroup
	for _, w := range workers {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Start(ctx)
		}()
	}
	log.Info("workers started", zap.Int("count", len(workers)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	wg.Wait()
	log.Info("workers stopped")
}
