package redis

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

const settledKeyPrefix = "settled_listing:"

// SettledCache is the Redis-backed settled-listing cache. Shared between
// process instances, it lets a freshly restarted worker skip listings a
// sibling already settled without waiting for the activity-log fence.
// Best-effort: a Redis failure degrades to "not cached" and is only logged,
// since the authoritative fences live in the document store.
type SettledCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewSettledCache(client *redis.Client, ttl time.Duration, log logger.Logger) *SettledCache {
	return &SettledCache{client: client, ttl: ttl, log: log}
}

func (c *SettledCache) key(listingID string) string {
	return settledKeyPrefix + listingID
}

func (c *SettledCache) Contains(ctx context.Context, listingID string) bool {
	_, err := c.client.Get(ctx, c.key(listingID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Settled cache lookup failed for listing %s: %v", listingID, err)
		}
		return false
	}
	return true
}

func (c *SettledCache) Add(ctx context.Context, listingID string) {
	if err := c.client.Set(ctx, c.key(listingID), "1", c.ttl).Err(); err != nil {
		c.log.Warnf("Settled cache write failed for listing %s: %v", listingID, err)
	}
}
