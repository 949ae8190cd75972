package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
	infraconfig "portfolio-service/internal/infrastructure/config"
)

var _ application.Worker = (*JobWorker)(nil)

// JobWorker drains queued manual refresh jobs from the store. Claiming flips
// a job to processing, so concurrent workers never double-run one.
type JobWorker struct {
	Jobs application.RefreshJobRepo
	Svc  *application.PortfolioService

	PollEvery  time.Duration
	BatchLimit int
	Log        *zap.Logger
}

func (w *JobWorker) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.PollEvery <= 0 {
		w.PollEvery = infraconfig.DefaultWorkerPoll
	}
	if w.BatchLimit <= 0 {
		w.BatchLimit = infraconfig.DefaultWorkerBatch
	}

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()

	log.Info("job_worker_started", zap.Duration("poll_every", w.PollEvery))
	for {
		select {
		case <-ctx.Done():
			log.Info("job_worker_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *JobWorker) tick(ctx context.Context, log *zap.Logger) {
	jobs, err := w.Jobs.ClaimQueued(ctx, w.BatchLimit)
	if err != nil {
		log.Warn("claim_failed", zap.Error(err))
		return
	}
	for _, j := range jobs {
		w.processOne(ctx, log, j)
	}
}

func (w *JobWorker) processOne(ctx context.Context, log *zap.Logger, j domain.RefreshJob) {
	res, err := w.Svc.RefreshClass(ctx, j.Class)
	if err != nil {
		msg := err.Error()
		_ = w.Jobs.UpdateStatus(ctx, j.ID, domain.RefreshStatusFailed, &msg)
		log.Warn("refresh_failed", zap.String("id", j.ID), zap.String("class", string(j.Class)), zap.Error(err))
		return
	}
	_ = w.Jobs.UpdateStatus(ctx, j.ID, domain.RefreshStatusDone, nil)
	log.Info("refresh_done",
		zap.String("id", j.ID),
		zap.String("class", string(j.Class)),
		zap.Int("matched", res.Matched),
		zap.Int("written", len(res.Dirty)),
	)
}
