// Package redisstore backs manual-refresh deduplication: an idempotency key
// seen once is reserved for the TTL, so replayed refresh requests do not
// enqueue duplicate jobs.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio-service/internal/application"
)

type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ application.IdempotencyStore = (*Store)(nil)

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

// TryReserve reserves key atomically; false means a duplicate.
func (s *Store) TryReserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.Client.SetNX(ctx, key, "1", s.TTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
