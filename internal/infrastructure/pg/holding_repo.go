package pg

import (
	"context"
	"fmt"

	"portfolio-service/internal/application"
	"portfolio-service/internal/domain"
)

type HoldingRepo struct{ db *DB }

var _ application.HoldingRepo = (*HoldingRepo)(nil)

func NewHoldingRepo(db *DB) *HoldingRepo { return &HoldingRepo{db: db} }

func (r *HoldingRepo) ListByClass(ctx context.Context, class domain.AssetClass) ([]domain.Holding, error) {
	const q = `
        SELECT id, identifier, class, display_name, quantity, average_cost,
               face_value, investment_amount, current_price, previous_price,
               current_value, pnl, pnl_percentage, updated_at
        FROM holdings WHERE class=$1 ORDER BY identifier`
	rows, err := r.db.Pool.Query(ctx, q, string(class))
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()
	var out []domain.Holding
	for rows.Next() {
		var h domain.Holding
		var cls string
		if err := rows.Scan(&h.ID, &h.Identifier, &cls, &h.DisplayName, &h.Quantity,
			&h.AverageCost, &h.FaceValue, &h.InvestmentAmount, &h.CurrentPrice,
			&h.PreviousPrice, &h.CurrentValue, &h.PnL, &h.PnLPercent, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		h.Class = domain.AssetClass(cls)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HoldingRepo) UpdateValuation(ctx context.Context, h domain.Holding) error {
	const up = `
        UPDATE holdings
        SET current_price=$3, previous_price=$4, current_value=$5,
            pnl=$6, pnl_percentage=$7,
            display_name = CASE WHEN display_name = '' THEN $8 ELSE display_name END,
            updated_at=NOW()
        WHERE identifier=$1 AND class=$2`
	tag, err := r.db.Pool.Exec(ctx, up, h.Identifier, string(h.Class),
		h.CurrentPrice, h.PreviousPrice, h.CurrentValue, h.PnL, h.PnLPercent, h.DisplayName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
