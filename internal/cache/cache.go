// Package cache is a small cache-aside layer over redis used for content
// reads (test catalogue, test details). Engine correctness paths never read
// from it. Every method is a no-op when redis is not configured, so the
// service runs fine without a cache.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bekzodm/levelcheck/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg *config.Config) *Cache {
	c := &Cache{ttl: time.Duration(cfg.Redis.TTLSeconds) * time.Second}
	if cfg.Redis.Addr == "" {
		log.Info().Msg("Redis not configured, content cache disabled")
		return c
	}
	c.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return c
}

// GetJSON reports whether key was present and decoded into v.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache entry undecodable, ignoring")
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache value not serializable")
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}
