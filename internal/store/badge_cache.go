package store

import (
	"context"
	"time"

	"github.com/wonny/riskbadge/internal/contracts"
	"github.com/wonny/riskbadge/pkg/redis"
)

// BadgeCache implements contracts.BadgeCache on Redis.
// Redis가 비활성화되면 항상 miss, 쓰기는 no-op
type BadgeCache struct {
	cache *redis.Cache
}

// NewBadgeCache creates a badge cache under the given key prefix
func NewBadgeCache(client *redis.Client, prefix string) *BadgeCache {
	return &BadgeCache{cache: redis.NewCache(client, prefix)}
}

// Get returns the cached badge and whether it was present
func (c *BadgeCache) Get(ctx context.Context, stockID int64) (*contracts.BadgeRecord, bool, error) {
	var rec contracts.BadgeRecord
	ok, err := c.cache.Get(ctx, redis.BadgeKey(stockID), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return &rec, true, nil
}

// Set stores a badge with TTL
func (c *BadgeCache) Set(ctx context.Context, rec *contracts.BadgeRecord, ttl time.Duration) error {
	return c.cache.Set(ctx, redis.BadgeKey(rec.StockID), rec, ttl)
}

// Invalidate drops the cached badges of the given stocks
func (c *BadgeCache) Invalidate(ctx context.Context, stockIDs []int64) error {
	keys := make([]string, len(stockIDs))
	for i, id := range stockIDs {
		keys[i] = redis.BadgeKey(id)
	}
	return c.cache.Delete(ctx, keys...)
}
