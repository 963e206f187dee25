package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/breaker"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

const opTimeout = 3 * time.Second

type RedisCache struct {
	client  *redis.Client
	prefix  string
	breaker *breaker.Breaker
}

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		KeyPrefix:    "superproductive:",
	}
}

func NewRedisCache(config *CacheConfig, log *logging.Logger) *RedisCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return &RedisCache{
		client:  rdb,
		prefix:  config.KeyPrefix,
		breaker: breaker.New(breaker.DefaultConfig("redis-cache"), log),
	}
}

// Client exposes the underlying connection so the job queue can share it.
func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisCache) do(ctx context.Context, fn func(ctx context.Context) error) error {
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		err := fn(ctx)
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if errors.Is(err, breaker.ErrOpen) {
		return ErrCacheDown
	}
	return err
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.do(ctx, func(ctx context.Context) error {
		if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
			return fmt.Errorf("failed to set cache: %w", err)
		}
		return nil
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) error {
	var data []byte
	err := r.do(ctx, func(ctx context.Context) error {
		b, err := r.client.Get(ctx, r.key(key)).Bytes()
		data = b
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get from cache: %w", err)
	}
	if data == nil {
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.client.Del(ctx, r.key(key)).Err()
	})
}

// DeletePattern removes keys matching a glob pattern using SCAN.
func (r *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	return r.do(ctx, func(ctx context.Context) error {
		iter := r.client.Scan(ctx, 0, r.key(pattern), 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan keys for pattern %s: %w", pattern, err)
		}
		if len(keys) == 0 {
			return nil
		}
		return r.client.Del(ctx, keys...).Err()
	})
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := r.do(ctx, func(ctx context.Context) error {
		v, err := r.client.Exists(ctx, r.key(key)).Result()
		n = v
		return err
	})
	return n > 0, err
}

func (r *RedisCache) SetWithTags(ctx context.Context, key string, value any, ttl time.Duration, tags []string) error {
	if err := r.Set(ctx, key, value, ttl); err != nil {
		return err
	}

	return r.do(ctx, func(ctx context.Context) error {
		pipe := r.client.Pipeline()
		for _, tag := range tags {
			tagKey := r.key("tag:" + tag)
			pipe.SAdd(ctx, tagKey, r.key(key))
			pipe.Expire(ctx, tagKey, ttl)
		}
		_, err := pipe.Exec(ctx)
		return err
	})
}

func (r *RedisCache) InvalidateByTag(ctx context.Context, tag string) error {
	return r.do(ctx, func(ctx context.Context) error {
		tagKey := r.key("tag:" + tag)
		keys, err := r.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return fmt.Errorf("failed to get tag members: %w", err)
		}
		return r.client.Del(ctx, append(keys, tagKey)...).Err()
	})
}

func (r *RedisCache) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Stats() map[string]any {
	pool := r.client.PoolStats()
	return map[string]any{
		"pool_hits":     pool.Hits,
		"pool_misses":   pool.Misses,
		"pool_timeouts": pool.Timeouts,
		"pool_total":    pool.TotalConns,
		"pool_idle":     pool.IdleConns,
		"breaker":       r.breaker.Stats(),
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
