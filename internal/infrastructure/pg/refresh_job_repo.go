package pg

import (
	"context"
	"errors"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
	"portfolio-service/internal/infrastructure/logx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RefreshJobRepo struct{ db *DB }

var _ application.RefreshJobRepo = (*RefreshJobRepo)(nil)

func NewRefreshJobRepo(db *DB) *RefreshJobRepo { return &RefreshJobRepo{db: db} }

func (r *RefreshJobRepo) CreateQueued(ctx context.Context, class domain.AssetClass) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO refresh_jobs(id, class, status)
        VALUES ($1, $2, 'queued')`
	log := logx.L().With(
		zap.String("repo", "refresh_job"),
		zap.String("operation", "CreateQueued"),
		zap.String("id", id),
		zap.String("class", string(class)),
	)
	tag, err := r.db.Pool.Exec(ctx, ins, id, string(class))
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return "", err
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", int64(tag.RowsAffected())))
	return id, nil
}

func (r *RefreshJobRepo) GetByID(ctx context.Context, id string) (domain.RefreshJob, error) {
	const q = `
        SELECT id::text, class, status, error, COALESCE(completed_at, requested_at)
        FROM refresh_jobs WHERE id=$1`
	log := logx.L().With(
		zap.String("repo", "refresh_job"),
		zap.String("operation", "GetByID"),
		zap.String("id", id),
	)
	var out domain.RefreshJob
	var cls, status string
	var errMsg *string
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&out.ID, &cls, &status, &errMsg, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Info("sql.query_no_rows")
		return domain.RefreshJob{}, application.ErrNotFound
	}
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return domain.RefreshJob{}, err
	}
	out.Class = domain.AssetClass(cls)
	out.Status = refreshStatus(status)
	out.Error = errMsg
	return out, nil
}

func (r *RefreshJobRepo) UpdateStatus(ctx context.Context, id string, st domain.RefreshStatus, errMsg *string) error {
	const up = `
        UPDATE refresh_jobs
        SET status=$2,
            error=$3,
            completed_at = CASE WHEN $2 IN ('done','failed') THEN NOW() ELSE completed_at END
        WHERE id=$1`
	log := logx.L().With(
		zap.String("repo", "refresh_job"),
		zap.String("operation", "UpdateStatus"),
		zap.String("id", id),
		zap.String("status", string(st)),
	)
	if errMsg != nil {
		log = log.With(zap.String("error", *errMsg))
	}
	tag, err := r.db.Pool.Exec(ctx, up, id, string(st), errMsg)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		log.Warn("sql.exec_no_rows")
		return application.ErrNotFound
	}
	log.Info("sql.exec_success")
	return nil
}

// ClaimQueued flips a batch of queued jobs to processing and returns them.
// SKIP LOCKED keeps concurrent workers from claiming the same job.
func (r *RefreshJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.RefreshJob, error) {
	const q = `
      WITH cte AS (
        SELECT id
        FROM refresh_jobs
        WHERE status = 'queued'
        ORDER BY requested_at
        LIMIT $1
        FOR UPDATE SKIP LOCKED
      )
      UPDATE refresh_jobs j
      SET status = 'processing'
      FROM cte
      WHERE j.id = cte.id
      RETURNING j.id::text, j.class;
    `
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.RefreshJob
	for rows.Next() {
		var id, cls string
		if err := rows.Scan(&id, &cls); err != nil {
			return nil, err
		}
		out = append(out, domain.RefreshJob{
			ID:     id,
			Class:  domain.AssetClass(cls),
			Status: domain.RefreshStatusProcessing,
		})
	}
	return out, rows.Err()
}

func refreshStatus(s string) domain.RefreshStatus {
	switch s {
	case "queued":
		return domain.RefreshStatusQueued
	case "processing":
		return domain.RefreshStatusProcessing
	case "done":
		return domain.RefreshStatusDone
	default:
		return domain.RefreshStatusFailed
	}
}
