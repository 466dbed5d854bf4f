package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jastrate/task-manager/pkg/logger"
)

// MultiLevelCache keeps hot values in process memory in front of Redis.
// Redis calls go through a circuit breaker so an outage degrades to L1 only.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics
	l1TTL   time.Duration
}

type MultiLevelConfig struct {
	L1MaxEntries int
	// L1TTL caps how long a value read from L2 is kept in L1.
	L1TTL   time.Duration
	Breaker *CircuitBreakerConfig
}

// NewMultiLevelCache builds the cache. redisCache may be nil, in which case
// only the in-memory level is used.
func NewMultiLevelCache(redisCache *RedisCache, config MultiLevelConfig) *MultiLevelCache {
	if config.L1TTL <= 0 {
		config.L1TTL = 5 * time.Minute
	}
	return &MultiLevelCache{
		l1:      NewMemoryCache(config.L1MaxEntries),
		l2:      redisCache,
		breaker: NewCircuitBreaker(config.Breaker),
		metrics: NewCacheMetrics(),
		l1TTL:   config.L1TTL,
	}
}

func (c *MultiLevelCache) l1Expiry(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > c.l1TTL {
		return c.l1TTL
	}
	return ttl
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.metrics.RecordSet()
	if err := c.l1.Set(ctx, key, value, c.l1Expiry(ttl)); err != nil {
		return err
	}

	if c.l2 == nil {
		return nil
	}
	err := c.breaker.Execute(func() error {
		return c.l2.Set(ctx, key, value, ttl)
	})
	if err != nil {
		c.metrics.RecordError()
		logger.Warn().Err(err).Str("key", key).Msg("l2 cache set failed")
	}
	return nil
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	var missed bool
	err := c.breaker.Execute(func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			missed = true
			return nil
		}
		return err
	})

	switch {
	case err != nil:
		c.metrics.RecordError()
		c.metrics.RecordMiss()
		return ErrCacheMiss
	case missed:
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordHit()
	_ = c.l1.Set(ctx, key, dest, c.l1TTL)
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	c.metrics.RecordDelete()
	_ = c.l1.Delete(ctx, key)

	if c.l2 == nil {
		return nil
	}
	return c.breaker.Execute(func() error {
		return c.l2.Delete(ctx, key)
	})
}

func (c *MultiLevelCache) DeletePattern(ctx context.Context, pattern string) error {
	c.metrics.RecordDelete()
	if err := c.l1.DeletePattern(ctx, pattern); err != nil {
		return err
	}

	if c.l2 == nil {
		return nil
	}
	return c.breaker.Execute(func() error {
		return c.l2.DeletePattern(ctx, pattern)
	})
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	m := c.metrics.GetStats()
	stats := map[string]interface{}{
		"l1":       c.l1.Stats(),
		"metrics":  m,
		"hit_rate": c.metrics.HitRate(),
		"breaker":  c.breaker.GetStats(),
	}

	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}

	return stats
}

func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	if c.breaker.GetState() == CircuitBreakerOpen {
		return ErrCacheDown
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
