package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/clearsight/clearsight/internal/aqi"
)

// RedisCache is a Cache backed by Redis, for deployments where multiple
// API instances should share resolved readings. Redis failures degrade
// to cache misses; they never fail a resolution.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// redisEntry is the stored JSON envelope.
type redisEntry struct {
	Reading  *aqi.Reading `json:"reading"`
	StoredAt time.Time    `json:"storedAt"`
}

// NewRedisCache creates a Redis-backed cache. Entries expire server-side
// after ttl, which should be at least the gateway's cache TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (*aqi.Reading, time.Time, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("redis cache get failed")
		}
		return nil, time.Time{}, false
	}

	var entry redisEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis cache entry corrupt")
		return nil, time.Time{}, false
	}

	return entry.Reading, entry.StoredAt, true
}

// Put implements Cache.
func (c *RedisCache) Put(ctx context.Context, key string, reading *aqi.Reading, storedAt time.Time) {
	data, err := json.Marshal(redisEntry{Reading: reading, StoredAt: storedAt})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("marshal cache entry failed")
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis cache put failed")
	}
}
