// Package ratelimit is a process-wide fixed-window request limiter keyed by
// caller identifier. State is lazily time-driven: windows reset on the next
// request after they elapse, and tracked identifiers are swept only when the
// map outgrows its threshold, so no background timer is needed.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultLimit      = 30
	DefaultWindow     = time.Minute
	DefaultMaxTracked = 4096
)

type record struct {
	count   int
	resetAt time.Time
}

// Decision is the outcome of one admission check. RetryAfter is only
// meaningful when Allowed is false.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter struct {
	limit      int
	window     time.Duration
	maxTracked int
	now        func() time.Time

	mu      sync.Mutex
	records map[string]*record
}

type Option func(*Limiter)

func WithNow(now func() time.Time) Option { return func(l *Limiter) { l.now = now } }

func WithMaxTracked(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.maxTracked = n
		}
	}
}

func New(limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{
		limit:      limit,
		window:     window,
		maxTracked: DefaultMaxTracked,
		now:        time.Now,
		records:    make(map[string]*record),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow admits or rejects one request from identifier under the fixed window.
func (l *Limiter) Allow(identifier string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()

	r, ok := l.records[identifier]
	if !ok || !now.Before(r.resetAt) {
		if !ok && len(l.records) >= l.maxTracked {
			l.sweep(now)
		}
		l.records[identifier] = &record{count: 1, resetAt: now.Add(l.window)}
		return Decision{Allowed: true, Remaining: l.limit - 1}
	}

	if r.count >= l.limit {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: r.resetAt.Sub(now)}
	}
	r.count++
	return Decision{Allowed: true, Remaining: l.limit - r.count}
}

// Tracked reports the number of identifiers currently held.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func (l *Limiter) sweep(now time.Time) {
	for id, r := range l.records {
		if !now.Before(r.resetAt) {
			delete(l.records, id)
		}
	}
}
