package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

const l1MaxTTL = 5 * time.Minute

// MultiLevelCache keeps an in-process L1 in front of an optional redis L2.
// Without redis the L1 serves every read. With redis, L2 is authoritative
// so an invalidation issued by another process (the worker) is seen at once,
// and L1 only answers while redis is failing. L2 failures are only logged.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	metrics *CacheMetrics
	log     *logging.Logger
}

func NewMultiLevelCache(redisCache *RedisCache, log *logging.Logger) *MultiLevelCache {
	if log == nil {
		log = logging.Nop()
	}
	return &MultiLevelCache{
		l1:      NewMemoryCache(defaultMaxEntries),
		l2:      redisCache,
		metrics: NewCacheMetrics(),
		log:     log,
	}
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error {
	c.metrics.sets.Add(1)
	if err := c.l1.Set(key, value, min(ttl, l1MaxTTL), tags...); err != nil {
		return err
	}

	if c.l2 == nil {
		return nil
	}
	var err error
	if len(tags) > 0 {
		err = c.l2.SetWithTags(ctx, key, value, ttl, tags)
	} else {
		err = c.l2.Set(ctx, key, value, ttl)
	}
	c.observe(err, "set", key)
	return nil
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest any) error {
	if c.l2 != nil {
		err := c.l2.Get(ctx, key, dest)
		switch {
		case err == nil:
			c.metrics.l2Hits.Add(1)
			_ = c.l1.Set(key, dest, l1MaxTTL)
			return nil
		case errors.Is(err, ErrCacheMiss):
			c.l1.Delete(key)
			c.metrics.misses.Add(1)
			return ErrCacheMiss
		default:
			c.observe(err, "get", key)
		}
	}

	if err := c.l1.Get(key, dest); err == nil {
		c.metrics.l1Hits.Add(1)
		return nil
	}

	c.metrics.misses.Add(1)
	return ErrCacheMiss
}

func (c *MultiLevelCache) Delete(ctx context.Context, key string) {
	c.metrics.deletes.Add(1)
	c.l1.Delete(key)
	if c.l2 != nil {
		c.observe(c.l2.Delete(ctx, key), "delete", key)
	}
}

func (c *MultiLevelCache) DeletePattern(ctx context.Context, pattern string) {
	c.metrics.deletes.Add(1)
	c.l1.DeletePattern(pattern)
	if c.l2 != nil {
		c.observe(c.l2.DeletePattern(ctx, pattern), "delete_pattern", pattern)
	}
}

func (c *MultiLevelCache) InvalidateTag(ctx context.Context, tag string) {
	c.metrics.deletes.Add(1)
	c.l1.InvalidateByTag(tag)
	if c.l2 != nil {
		c.observe(c.l2.InvalidateByTag(ctx, tag), "invalidate_tag", tag)
	}
}

func (c *MultiLevelCache) Stats() map[string]any {
	stats := map[string]any{
		"l1_entries": c.l1.Len(),
		"metrics":    c.metrics.Snapshot(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 != nil {
		return c.l2.Health(ctx)
	}
	return nil
}

func (c *MultiLevelCache) Close() error {
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}

func (c *MultiLevelCache) observe(err error, op, key string) {
	if err == nil {
		return
	}
	c.metrics.errors.Add(1)
	c.log.Warn().Err(err).Str("op", op).Str("key", key).Msg("redis cache operation failed")
}
