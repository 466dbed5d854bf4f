package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(2)
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", payload{Name: "a"}, time.Minute))
	require.NoError(t, m.Set(ctx, "b", payload{Name: "b"}, 2*time.Minute))

	var got payload
	require.NoError(t, m.Get(ctx, "a", &got))
	assert.Equal(t, "a", got.Name)

	got.Name = "mutated"
	var again payload
	require.NoError(t, m.Get(ctx, "a", &again))
	assert.Equal(t, "a", again.Name)

	require.NoError(t, m.Set(ctx, "c", payload{Name: "c"}, time.Minute))
	assert.Equal(t, 2, m.Len())
	assert.ErrorIs(t, m.Get(ctx, "a", &got), ErrCacheMiss, "entry closest to expiry is evicted")

	now = now.Add(3 * time.Minute)
	assert.ErrorIs(t, m.Get(ctx, "b", &got), ErrCacheMiss)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(10)
	for _, k := range []string{"dashboard:1", "dashboard:2", "task:1"} {
		require.NoError(t, m.Set(ctx, k, 1, 0))
	}

	require.NoError(t, m.DeletePattern(ctx, "dashboard:*"))
	assert.Equal(t, 1, m.Len())
	assert.Error(t, m.DeletePattern(ctx, "["))
}

func TestMultiLevelCache_MemoryOnly(t *testing.T) {
	ctx := context.Background()
	c := NewMultiLevelCache(nil, MultiLevelConfig{L1MaxEntries: 10})

	var got payload
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", payload{Count: 3}, time.Minute))
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 3, got.Count)
	assert.NoError(t, c.Health(ctx))

	require.NoError(t, c.DeletePattern(ctx, "*"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)

	metrics := c.Stats()["metrics"].(CacheMetrics)
	assert.Equal(t, int64(1), metrics.Hits)
	assert.Equal(t, int64(2), metrics.Misses)
}

func TestMultiLevelCache_FallsThroughToRedis(t *testing.T) {
	ctx := context.Background()
	rc, mr := setupRedisCache(t)
	c := NewMultiLevelCache(rc, MultiLevelConfig{})

	require.NoError(t, rc.Set(ctx, "shared", payload{Name: "from-l2"}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "shared", &got))
	assert.Equal(t, "from-l2", got.Name)

	mr.Del("taskmgr:shared")
	var cached payload
	require.NoError(t, c.Get(ctx, "shared", &cached), "promoted to l1")
	assert.Equal(t, "from-l2", cached.Name)
}

func TestMultiLevelCache_RedisOutageDegrades(t *testing.T) {
	ctx := context.Background()
	rc, mr := setupRedisCache(t)
	c := NewMultiLevelCache(rc, MultiLevelConfig{
		Breaker: &CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute, HalfOpenMaxCalls: 1},
	})
	mr.Close()

	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute), "l2 failures are absorbed")

	var got int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 1, got)

	assert.ErrorIs(t, c.Health(ctx), ErrCacheDown)
	assert.ErrorIs(t, c.Get(ctx, "absent", &got), ErrCacheMiss)
}
