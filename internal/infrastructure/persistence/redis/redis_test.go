package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewClientFromRedis(rdb), mr
}

func TestCache_GetOrLoadSafe(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client)
	ctx := context.Background()
	key := ConfigKey("t1", "category", "travel")

	calls := 0
	loader := func() (interface{}, error) {
		calls++
		return map[string]string{"name": "Travel"}, nil
	}

	first, err := cache.GetOrLoadSafe(ctx, key, time.Minute, loader)
	require.NoError(t, err)
	second, err := cache.GetOrLoadSafe(ctx, key, time.Minute, loader)
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"Travel"}`, string(first))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCache_LoaderErrorNotCached(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCache(client)
	ctx := context.Background()
	key := ConfigKey("t1", "writer", "missing")
	errMissing := errors.New("missing")

	_, err := cache.GetOrLoadSafe(ctx, key, time.Minute, func() (interface{}, error) {
		return nil, errMissing
	})
	require.ErrorIs(t, err, errMissing)
	assert.False(t, mr.Exists(key))

	_, err = client.Redis().Get(ctx, key).Result()
	assert.True(t, IsNil(err))
}

func TestCache_KeysAreTenantScoped(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	for _, tenant := range []string{"t1", "t2"} {
		_, err := cache.GetOrLoadSafe(ctx, ConfigKey(tenant, "category", "travel"), time.Minute, func() (interface{}, error) {
			return map[string]string{"tenant": tenant}, nil
		})
		require.NoError(t, err)
	}

	got, err := mr.Get("cache:t2:category:travel")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tenant":"t2"}`, got)
	assert.Equal(t, time.Minute, mr.TTL("cache:t1:category:travel"))
}

func TestRateLimiter_Window(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()
	key := BuildRateLimitKey("t1", "articles.generate")

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, key, 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}

	ok, err := limiter.Allow(ctx, key, 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := limiter.Remaining(ctx, key, 3, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	now = now.Add(time.Hour + time.Second)
	ok, err = limiter.Allow(ctx, key, 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, limiter.Reset(ctx, key))
	remaining, err = limiter.Remaining(ctx, key, 3, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)
}

func TestLocker_AcquireRelease(t *testing.T) {
	client, mr := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()
	key := GenerationLockKey("t1", "travel")

	release, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists(key))

	again, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestLocker_ReleaseKeepsForeignOwner(t *testing.T) {
	client, mr := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()
	key := GenerationLockKey("t1", "travel")

	release, err := locker.Acquire(ctx, key, time.Second)
	require.NoError(t, err)

	// 锁过期后被其他执行者获取
	mr.FastForward(2 * time.Second)
	_, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	assert.True(t, mr.Exists(key))
}
