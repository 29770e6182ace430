package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/roomloop/flatmarket/internal/constants"
	"github.com/roomloop/flatmarket/internal/dto"
	"github.com/roomloop/flatmarket/pkg/cache"
	"github.com/roomloop/flatmarket/pkg/logger"
	"github.com/roomloop/flatmarket/pkg/redis"
)

const (
	listingCachePrefix = constants.CacheKeyPrefix + "flats:list:"
	listingCacheTTL    = 60 * time.Second
)

// ListingCache caches serialized flat listing pages. The redis-backed
// implementation is used when redis is enabled; otherwise an in-process
// cache serves the same role.
type ListingCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Invalidate(ctx context.Context)
}

// listingCacheKey derives a stable key from the filter and page window.
func listingCacheKey(filter dto.FlatFilter, limit, offset int) string {
	raw := fmt.Sprintf("%s|%s|%d|%d|%d|%s|%t|%d|%d",
		filter.City, filter.Locality, filter.BHK, filter.MinRent, filter.MaxRent,
		filter.Furnishing, filter.IncludeInactive, limit, offset,
	)
	sum := sha256.Sum256([]byte(raw))
	return listingCachePrefix + hex.EncodeToString(sum[:16])
}

// RedisListingCache backs the listing cache with redis.
type RedisListingCache struct {
	client *redis.Client
}

func NewRedisListingCache(client *redis.Client) *RedisListingCache {
	return &RedisListingCache{client: client}
}

func (c *RedisListingCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisListingCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, listingCacheTTL); err != nil {
		logger.WarnWithContext(ctx, "Listing cache write failed").
			String("key", key).
			Err(err).
			Log()
	}
}

func (c *RedisListingCache) Invalidate(ctx context.Context) {
	if err := c.client.DelPattern(ctx, listingCachePrefix+"*"); err != nil {
		logger.WarnWithContext(ctx, "Listing cache invalidation failed").
			Err(err).
			Log()
	}
}

// MemoryListingCache backs the listing cache with the in-process cache.
type MemoryListingCache struct {
	cache *cache.Cache
}

func NewMemoryListingCache(c *cache.Cache) *MemoryListingCache {
	return &MemoryListingCache{cache: c}
}

func (c *MemoryListingCache) Get(_ context.Context, key string) (string, bool) {
	return c.cache.Get(key)
}

func (c *MemoryListingCache) Set(_ context.Context, key, value string) {
	c.cache.Set(key, value, listingCacheTTL)
}

func (c *MemoryListingCache) Invalidate(_ context.Context) {
	c.cache.DeletePrefix(listingCachePrefix)
}
