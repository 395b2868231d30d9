package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "sessions:v1:"

// RedisCache is a read-through cache for Resolve. Entries carry the remaining
// session lifetime as TTL, so the cache can never outlive the session.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) GetUserID(ctx context.Context, tokenHash string) (string, bool) {
	v, err := c.rdb.Get(ctx, cacheKeyPrefix+tokenHash).Result()

	if err != nil {
		// redis.Nil and transport errors alike fall through to the store
		return "", false
	}

	return v, v != ""
}

func (c *RedisCache) SetUserID(ctx context.Context, tokenHash, userID string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	_ = c.rdb.Set(ctx, cacheKeyPrefix+tokenHash, userID, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, tokenHash string) {
	_ = c.rdb.Del(ctx, cacheKeyPrefix+tokenHash).Err()
}
