package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portfolio-service/internal/application"
	infraconfig "portfolio-service/internal/infrastructure/config"
)

var _ application.Worker = (*Refresher)(nil)

// Refresher re-runs the batch reconciliation path on a fixed interval,
// independent of any inbound request. Overlapping with a manual refresh is
// fine: reconciliation is idempotent and commutative over holdings.
type Refresher struct {
	Svc      *application.PortfolioService
	Interval time.Duration
	Log      *zap.Logger
}

func (w *Refresher) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.Interval <= 0 {
		w.Interval = infraconfig.DefaultRefreshEvery
	}

	t := time.NewTicker(w.Interval)
	defer t.Stop()

	log.Info("refresher_started", zap.Duration("interval", w.Interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("refresher_stopped")
			return
		case <-t.C:
			w.Svc.RefreshAll(ctx)
		}
	}
}
