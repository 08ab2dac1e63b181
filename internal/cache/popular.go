// Package cache holds the Redis-backed popular-products cache.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okandemir/storefront/internal/domain"
)

const popularKey = "storefront:products:popular"

// PopularCache caches the popular-products listing in Redis. A nil
// client disables caching, so the service runs without Redis.
type PopularCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewPopularCache creates a popular-products cache. client may be nil.
func NewPopularCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *PopularCache {
	return &PopularCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached listing and whether it was present. Cache
// errors are logged and reported as a miss.
func (c *PopularCache) Get(ctx context.Context) ([]domain.Product, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, popularKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "popular cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.logger.WarnContext(ctx, "popular cache decode failed", slog.String("error", err.Error()))
		return nil, false
	}
	return products, true
}

// Set stores the listing with the configured TTL. Errors are logged only.
func (c *PopularCache) Set(ctx context.Context, products []domain.Product) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(products)
	if err != nil {
		c.logger.WarnContext(ctx, "popular cache encode failed", slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, popularKey, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "popular cache write failed", slog.String("error", err.Error()))
	}
}

// Invalidate drops the cached listing. Called on every product mutation.
func (c *PopularCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, popularKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "popular cache invalidate failed", slog.String("error", err.Error()))
	}
}
