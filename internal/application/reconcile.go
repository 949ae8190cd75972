package application

import (
	"math"

	"portfolio-service/internal/domain"
)

// DefaultPlaceholderEpsilon is the gap below which a provider previous-close
// is treated as a placeholder for the current price. Configurable because the
// upstream quirk it papers over can change without notice.
const DefaultPlaceholderEpsilon = 0.01

// Reconciler merges a fetched quote map into a holdings snapshot. It is pure
// and idempotent: the same inputs always yield the same snapshot, so
// overlapping refresh runs need no mutual exclusion.
type Reconciler struct {
	epsilon float64
}

func NewReconciler(epsilon float64) *Reconciler {
	if epsilon <= 0 {
		epsilon = DefaultPlaceholderEpsilon
	}
	return &Reconciler{epsilon: epsilon}
}

// ReconcileResult carries the updated in-memory snapshot plus the subset of
// holdings whose valuation should be persisted.
type ReconcileResult struct {
	Holdings []domain.Holding
	Dirty    []domain.Holding
	Matched  int
}

// Reconcile applies the quote map to every holding. Quotes are keyed by
// canonical symbol; a holding matches on its identifier first, then on the
// suffix-stripped form. Holdings without a quote are left untouched.
func (r *Reconciler) Reconcile(holdings []domain.Holding, quotes map[string]domain.Quote) ReconcileResult {
	out := ReconcileResult{Holdings: make([]domain.Holding, 0, len(holdings))}
	for _, h := range holdings {
		q, ok := quotes[h.Identifier]
		if !ok {
			q, ok = quotes[domain.Canonical(h.Identifier)]
		}
		if !ok {
			out.Holdings = append(out.Holdings, h)
			continue
		}
		out.Matched++

		updated := r.apply(h, q)
		out.Holdings = append(out.Holdings, updated)
		// Never persist a zero or invalid price; the snapshot may fall back
		// to the last stored price but the store must not be corrupted.
		if q.Usable() {
			out.Dirty = append(out.Dirty, updated)
		}
	}
	return out
}

func (r *Reconciler) apply(h domain.Holding, q domain.Quote) domain.Holding {
	if q.Usable() {
		h.CurrentPrice = q.Price
		// Providers with no real prior-session data report previousClose
		// equal (or nearly equal) to the current price. Trusting that would
		// erase the day-over-day change, so keep the stored previous price.
		if q.PrevClose > 0 && math.Abs(q.PrevClose-q.Price) >= r.epsilon {
			h.PreviousPrice = q.PrevClose
		}
		if h.DisplayName == "" && q.DisplayName != "" {
			h.DisplayName = q.DisplayName
		}
	}

	h.CurrentValue = h.Quantity * h.UnitValue()
	h.PnL = h.CurrentValue - h.InvestmentAmount
	if h.InvestmentAmount > 0 {
		h.PnLPercent = h.PnL / h.InvestmentAmount * 100
	} else {
		h.PnLPercent = 0
	}
	return h
}
