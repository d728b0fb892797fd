package cache

import (
	"context"
	"errors"
	"time"

	"github.com/memodb-io/sitestore/internal/config"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

func New(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
}

func RegisterOpenTelemetryPlugin(rdb *redis.Client) error {
	return redisotel.InstrumentTracing(rdb)
}

// PageCache stores rendered public pages keyed by project slug and the
// published version they were rendered from. Callers resolve the pinned
// version before reading, so an entry written for a version that is no longer
// published is never served.
type PageCache interface {
	Get(ctx context.Context, slug, versionID string) ([]byte, bool, error)
	Set(ctx context.Context, slug, versionID string, page []byte) error
	Invalidate(ctx context.Context, slug, versionID string) error
}

type redisPageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) PageCache {
	return &redisPageCache{rdb: rdb, ttl: ttl}
}

func pageKey(slug, versionID string) string { return "sitestore:page:" + slug + ":" + versionID }

func (c *redisPageCache) Get(ctx context.Context, slug, versionID string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, pageKey(slug, versionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *redisPageCache) Set(ctx context.Context, slug, versionID string, page []byte) error {
	return c.rdb.Set(ctx, pageKey(slug, versionID), page, c.ttl).Err()
}

func (c *redisPageCache) Invalidate(ctx context.Context, slug, versionID string) error {
	return c.rdb.Del(ctx, pageKey(slug, versionID)).Err()
}

// NopPageCache is used when no redis address is configured.
type NopPageCache struct{}

func (NopPageCache) Get(context.Context, string, string) ([]byte, bool, error) { return nil, false, nil }
func (NopPageCache) Set(context.Context, string, string, []byte) error         { return nil }
func (NopPageCache) Invalidate(context.Context, string, string) error          { return nil }
