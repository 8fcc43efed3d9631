package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// dedupTTL bounds how long a processed gateway notification is remembered.
// The paid transition itself is idempotent, so expiry only costs a redundant
// database round trip.
const dedupTTL = 24 * time.Hour

// RedisDedupStore remembers processed gateway notifications by transaction id
type RedisDedupStore struct {
	client *redis.Client
}

// NewRedisDedupStore creates a new Redis-backed dedup store
func NewRedisDedupStore(client *redis.Client) *RedisDedupStore {
	return &RedisDedupStore{client: client}
}

// FirstDelivery atomically records the notification key and reports whether
// this is the first time it has been seen
func (s *RedisDedupStore) FirstDelivery(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, "payment:callback:"+key, 1, dedupTTL).Result()
}
