package cacheinfra

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propkit/client-go/cache"
)

const testKeyPrefix = "propkit"

func newRedisTestCache(t *testing.T, cfg cache.Config) (cache.QueryCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	qc, err := NewRedisCache(client, testKeyPrefix, cfg)
	require.NoError(t, err)
	return qc, srv
}

// storedName maps a logical key to the name it is stored under, prefix
// included.
func storedName(key cache.Key) string {
	return testKeyPrefix + cache.KeySeparator + key.String()
}

func TestNewRedisCache_Rejects(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	_, err := NewRedisCache(nil, "", cache.DefaultConfig())
	assert.Error(t, err, "nil client")

	bad := cache.DefaultConfig()
	bad.TTL = 0
	_, err = NewRedisCache(client, "", bad)
	assert.Error(t, err, "invalid config")
}

func TestRedisCache_GetOrFetchCaches(t *testing.T) {
	qc, _ := newRedisTestCache(t, cache.DefaultConfig())
	ctx := context.Background()
	key := cache.NewKey("properties", "detail", "p1")

	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "fetched", nil
	}

	got, err := cache.GetOrFetch(ctx, qc, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched", got)

	got, err = cache.GetOrFetch(ctx, qc, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched", got)
	assert.Equal(t, int32(1), calls.Load(), "second read must come from redis")
}

func TestRedisCache_DegradesToFetchWhenUnavailable(t *testing.T) {
	qc, srv := newRedisTestCache(t, cache.DefaultConfig())
	ctx := context.Background()
	srv.SetError("LOADING redis is loading the dataset in memory")

	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "from-source", nil
	}

	got, err := cache.GetOrFetch(ctx, qc, cache.NewKey("jobs", "list"), fetch)
	require.NoError(t, err, "an unreachable redis must not fail reads")
	assert.Equal(t, "from-source", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRedisCache_InvalidateQueriesSegmentAware(t *testing.T) {
	qc, srv := newRedisTestCache(t, cache.DefaultConfig())
	ctx := context.Background()

	u1 := cache.NewKey("units", "detail", "u1")
	u1jobs := cache.NewKey("units", "detail", "u1", "jobs")
	u10 := cache.NewKey("units", "detail", "u10")

	for _, k := range []cache.Key{u1, u1jobs, u10} {
		require.NoError(t, qc.Set(ctx, k.String(), "seed:"+k.String()))
	}

	require.NoError(t, qc.InvalidateQueries(ctx, cache.NewKey("units", "detail", "u1")))

	assert.False(t, srv.Exists(storedName(u1)))
	assert.False(t, srv.Exists(storedName(u1jobs)))
	assert.True(t, srv.Exists(storedName(u10)), "u10 must not be invalidated by the u1 prefix")
}

func TestRedisCache_SnapshotAndUpdateKeepsTTL(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.TTL = time.Minute
	qc, srv := newRedisTestCache(t, cfg)
	ctx := context.Background()

	listKey := cache.NewKey("properties", "list", "all")
	prefix := cache.NewKey("properties", "list")
	require.NoError(t, qc.Set(ctx, listKey.String(), []string{"p1", "p2"}))

	snap, err := qc.GetQueriesData(ctx, prefix)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, listKey.String(), snap[0].Key.String(), "snapshot keys come back without the storage prefix")

	// Burn part of the TTL so a reset would be observable.
	srv.FastForward(20 * time.Second)

	err = qc.SetQueriesData(ctx, prefix, func(data any) any {
		var items []string
		if err := json.Unmarshal(data.(json.RawMessage), &items); err != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it != "p1" {
				out = append(out, it)
			}
		}
		return out
	})
	require.NoError(t, err)

	got, err := cache.GetOrFetch(ctx, qc, listKey, func(context.Context) ([]string, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, got)
	assert.Equal(t, 40*time.Second, srv.TTL(storedName(listKey)),
		"a local update must not extend the entry's remaining TTL")
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.TTL = time.Minute
	qc, srv := newRedisTestCache(t, cfg)
	ctx := context.Background()
	key := cache.NewKey("dashboard", "stats")

	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "stats", nil
	}

	_, err := cache.GetOrFetch(ctx, qc, key, fetch)
	require.NoError(t, err)

	srv.FastForward(2 * time.Minute)

	_, err = cache.GetOrFetch(ctx, qc, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "expired entry must refetch")
}

func TestRedisCache_DeleteAndInvalidPrefix(t *testing.T) {
	qc, srv := newRedisTestCache(t, cache.DefaultConfig())
	ctx := context.Background()
	key := cache.NewKey("tenants", "detail", "t1")

	require.NoError(t, qc.Set(ctx, key.String(), "t1"))
	require.NoError(t, qc.Delete(ctx, key.String()))
	assert.False(t, srv.Exists(storedName(key)))

	assert.Error(t, qc.InvalidateQueries(ctx, cache.Key{}))
	_, err := qc.GetQueriesData(ctx, cache.NewKey("units", ""))
	assert.Error(t, err)
	assert.Error(t, qc.SetQueriesData(ctx, cache.Key{}, func(any) any { return nil }))
}
