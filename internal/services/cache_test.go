package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *CacheService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "masters", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, "masters", got.Name)
	assert.Equal(t, 3, got.Count)

	var simple payload
	require.NoError(t, cache.GetSimple("k", &simple))
	assert.Equal(t, got, simple)
}

func TestCacheGetMiss(t *testing.T) {
	cache := newTestCache(t)

	var dest map[string]string
	err := cache.Get(context.Background(), "absent", &dest)
	assert.Error(t, err)
}

func TestCacheDeleteMultipleKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, LeaderboardCacheKey("abc"), "rows", time.Minute))
	require.NoError(t, cache.Set(ctx, TournamentCacheKey(), "header", time.Minute))

	require.NoError(t, cache.Delete(ctx, LeaderboardCacheKey("abc"), TournamentCacheKey()))

	var dest string
	assert.Error(t, cache.Get(ctx, LeaderboardCacheKey("abc"), &dest))
	assert.Error(t, cache.Get(ctx, TournamentCacheKey(), &dest))
}

func TestCacheSetWithRetry(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetWithRetry(ctx, SyncStatusCacheKey(), "ok", time.Minute, 3))

	var got string
	require.NoError(t, cache.Get(ctx, SyncStatusCacheKey(), &got))
	assert.Equal(t, "ok", got)
}
