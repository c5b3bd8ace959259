package records

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusCache keeps the latest provider status per call in Redis so the
// status endpoint can answer without hitting the provider or the
// database on every poll. Entries expire on their own; the store stays
// the source of truth.
type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatusCache(rdb *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &StatusCache{rdb: rdb, ttl: ttl}
}

func statusKey(callID string) string { return "call:status:" + callID }

func (c *StatusCache) SetStatus(ctx context.Context, callID, status string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Set(ctx, statusKey(callID), status, c.ttl).Err(); err != nil {
		return fmt.Errorf("records: cache status %s: %w", callID, err)
	}
	return nil
}

// GetStatus returns the cached status, or "" when the entry is missing
// or Redis is unavailable.
func (c *StatusCache) GetStatus(ctx context.Context, callID string) string {
	if c == nil || c.rdb == nil {
		return ""
	}
	status, err := c.rdb.Get(ctx, statusKey(callID)).Result()
	if err != nil {
		return ""
	}
	return status
}
