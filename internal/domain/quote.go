package domain

import "time"

// Quote is the normalized result of resolving one identifier against any
// upstream source. It is ephemeral: consumed by reconciliation, never stored.
type Quote struct {
	Symbol      string
	Price       float64
	PrevClose   float64
	Currency    string
	Exchange    string
	DisplayName string
	FetchedAt   time.Time
}

// Usable reports whether the quote carries a price worth acting on.
func (q Quote) Usable() bool {
	return q.Price > 0
}
