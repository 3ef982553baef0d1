package cacheinfra

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propkit/client-go/cache"
)

func newTestCache(t *testing.T) cache.QueryCache {
	t.Helper()
	qc, err := NewSturdycCache(cache.DefaultConfig())
	require.NoError(t, err)
	return qc
}

func fetchString(s string) cache.FetchFn[string] {
	return func(context.Context) (string, error) { return s, nil }
}

func TestNewSturdycCache_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cache.Config)
	}{
		{name: "zero capacity", mutate: func(c *cache.Config) { c.Capacity = 0 }},
		{name: "zero shards", mutate: func(c *cache.Config) { c.NumShards = 0 }},
		{name: "zero ttl", mutate: func(c *cache.Config) { c.TTL = 0 }},
		{name: "sub-millisecond ttl", mutate: func(c *cache.Config) { c.TTL = 500 * time.Microsecond }},
		{name: "eviction percentage out of range", mutate: func(c *cache.Config) { c.EvictionPercentage = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cache.DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewSturdycCache(cfg)
			assert.Error(t, err)
		})
	}
}

func TestSturdycCache_GetOrFetchCaches(t *testing.T) {
	qc := newTestCache(t)
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
	assert.Equal(t, int32(1), calls.Load(), "second read must come from cache")
}

func TestSturdycCache_FetchErrorPropagates(t *testing.T) {
	qc := newTestCache(t)
	wantErr := errors.New("upstream down")

	_, err := cache.GetOrFetch(context.Background(), qc, cache.NewKey("jobs", "list"),
		func(context.Context) (string, error) { return "", wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestSturdycCache_InvalidFetchFnRejected(t *testing.T) {
	qc := newTestCache(t)
	ctx := context.Background()

	_, err := qc.GetOrFetch(ctx, "k", nil)
	assert.Error(t, err)

	_, err = qc.GetOrFetch(ctx, "k", 42)
	assert.Error(t, err)

	_, err = qc.GetOrFetch(ctx, "k", func() (string, error) { return "", nil })
	assert.Error(t, err)
}

func TestSturdycCache_InvalidateQueriesSegmentAware(t *testing.T) {
	qc := newTestCache(t)
	ctx := context.Background()

	u1 := cache.NewKey("units", "detail", "u1")
	u1jobs := cache.NewKey("units", "detail", "u1", "jobs")
	u10 := cache.NewKey("units", "detail", "u10")

	for _, k := range []cache.Key{u1, u1jobs, u10} {
		_, err := cache.GetOrFetch(ctx, qc, k, fetchString("seed:"+k.String()))
		require.NoError(t, err)
	}

	require.NoError(t, qc.InvalidateQueries(ctx, cache.NewKey("units", "detail", "u1")))

	var refetched atomic.Int32
	refetch := func(context.Context) (string, error) {
		refetched.Add(1)
		return "fresh", nil
	}

	got, err := cache.GetOrFetch(ctx, qc, u1, refetch)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	_, err = cache.GetOrFetch(ctx, qc, u1jobs, refetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), refetched.Load(), "u1 and its sub-resource must refetch")

	got, err = cache.GetOrFetch(ctx, qc, u10, refetch)
	require.NoError(t, err)
	assert.Equal(t, "seed:"+u10.String(), got, "u10 must not be invalidated by the u1 prefix")
}

func TestSturdycCache_InvalidPrefixRejected(t *testing.T) {
	qc := newTestCache(t)
	ctx := context.Background()

	assert.Error(t, qc.InvalidateQueries(ctx, cache.Key{}))
	assert.Error(t, qc.InvalidateQueries(ctx, cache.NewKey("units", "")))
	_, err := qc.GetQueriesData(ctx, cache.NewKey(""))
	assert.Error(t, err)
}

func TestSturdycCache_SnapshotAndUpdate(t *testing.T) {
	qc := newTestCache(t)
	ctx := context.Background()

	listKey := cache.NewKey("properties", "list", "all")
	require.NoError(t, qc.Set(ctx, listKey.String(), []string{"p1", "p2"}))

	snap, err := qc.GetQueriesData(ctx, cache.NewKey("properties", "list"))
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, listKey.String(), snap[0].Key.String())

	err = qc.SetQueriesData(ctx, cache.NewKey("properties", "list"), func(data any) any {
		items := data.([]string)
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
		return nil, errors.New("updated list should come from the cache")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, got)
}

func TestSturdycCache_TTLEviction(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.TTL = 25 * time.Millisecond
	cfg.EvictionInterval = 10 * time.Millisecond

	qc, err := NewSturdycCache(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	key := cache.NewKey("dashboard", "stats")

	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "stats", nil
	}

	_, err = cache.GetOrFetch(ctx, qc, key, fetch)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := cache.GetOrFetch(ctx, qc, key, fetch)
		return err == nil && calls.Load() >= 2
	}, time.Second, 20*time.Millisecond, "entry should expire and refetch after the TTL")
}
