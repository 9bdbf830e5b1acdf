package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ViewCache stores rendered view fragments in Redis and lets mutating
// operations signal staleness. Invalidation is fire-and-forget: failures are
// logged and never surfaced to the calling operation. A nil client disables
// caching entirely.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewViewCache constructs the cache wrapper.
func NewViewCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ViewCache {
	return &ViewCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "view_cache").Logger(),
	}
}

// Get loads a cached value into target, reporting whether it was a hit.
func (c *ViewCache) Get(ctx context.Context, key string, target interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to read view cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to decode cached view")
		return false
	}

	return true
}

// Set stores a value under the configured TTL, best effort.
func (c *ViewCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode view for cache")
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to store view cache")
	}
}

// Invalidate drops the given keys. The signal is never awaited by callers and
// never fails the mutating operation that emitted it.
func (c *ViewCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate view cache")
	}
}
