// Package cacheinfra provides the cache.QueryCache backends: an in-memory
// sturdyc adapter (the default) and a Redis adapter for deployments that
// share one cache across processes.
package cacheinfra

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/propkit/client-go/cache"
)

// EarlyRefreshConfig configures sturdyc's early refresh behaviour, which
// refreshes frequently read entries before they expire to avoid stampedes.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// SturdycOption tweaks the sturdyc client beyond cache.Config.
type SturdycOption func(*sturdycOptions)

type sturdycOptions struct {
	earlyRefresh         *EarlyRefreshConfig
	missingRecordStorage bool
}

// WithEarlyRefresh enables background refresh of hot entries.
func WithEarlyRefresh(cfg EarlyRefreshConfig) SturdycOption {
	return func(o *sturdycOptions) { o.earlyRefresh = &cfg }
}

// WithMissingRecordStorage remembers keys that returned no results, so
// repeated misses do not hit the backend.
func WithMissingRecordStorage() SturdycOption {
	return func(o *sturdycOptions) { o.missingRecordStorage = true }
}

// sturdycCache implements cache.QueryCache over a sharded in-memory
// sturdyc client. In-flight fetch deduplication comes from sturdyc's
// stampede protection, so CancelQueries is a no-op here.
type sturdycCache struct {
	client *sturdyc.Client[any]
}

var _ cache.QueryCache = (*sturdycCache)(nil)

// NewSturdycCache builds the default in-memory query cache.
func NewSturdycCache(cfg cache.Config, opts ...SturdycOption) (cache.QueryCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cacheinfra: %w", err)
	}

	var o sturdycOptions
	for _, opt := range opts {
		opt(&o)
	}

	var sturdycOpts []sturdyc.Option
	if o.earlyRefresh != nil {
		sturdycOpts = append(sturdycOpts, sturdyc.WithEarlyRefreshes(
			o.earlyRefresh.MinAsyncRefreshTime,
			o.earlyRefresh.MaxAsyncRefreshTime,
			o.earlyRefresh.SyncRefreshTime,
			o.earlyRefresh.RetryBaseDelay,
		))
	}
	if o.missingRecordStorage {
		sturdycOpts = append(sturdycOpts, sturdyc.WithMissingRecordStorage())
	}
	if cfg.EvictionInterval > 0 {
		sturdycOpts = append(sturdycOpts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		sturdycOpts...,
	)

	return &sturdycCache{client: client}, nil
}

func (s *sturdycCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}
	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	})
}

func (s *sturdycCache) Set(_ context.Context, key string, value any) error {
	s.client.Set(key, value)
	return nil
}

func (s *sturdycCache) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

func (s *sturdycCache) InvalidateQueries(_ context.Context, prefix cache.Key) error {
	if !prefix.Valid() {
		return fmt.Errorf("cacheinfra: invalid invalidation prefix %q", prefix.String())
	}
	for _, key := range s.client.ScanKeys() {
		if cache.MatchesPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

func (s *sturdycCache) GetQueriesData(_ context.Context, prefix cache.Key) ([]cache.QueryData, error) {
	if !prefix.Valid() {
		return nil, fmt.Errorf("cacheinfra: invalid query prefix %q", prefix.String())
	}
	var out []cache.QueryData
	for _, key := range s.client.ScanKeys() {
		if !cache.MatchesPrefix(key, prefix) {
			continue
		}
		if value, ok := s.client.Get(key); ok {
			out = append(out, cache.QueryData{Key: cache.SplitKey(key), Data: value})
		}
	}
	return out, nil
}

func (s *sturdycCache) SetQueriesData(_ context.Context, prefix cache.Key, update func(any) any) error {
	if !prefix.Valid() {
		return fmt.Errorf("cacheinfra: invalid query prefix %q", prefix.String())
	}
	for _, key := range s.client.ScanKeys() {
		if !cache.MatchesPrefix(key, prefix) {
			continue
		}
		if value, ok := s.client.Get(key); ok {
			if updated := update(value); updated != nil {
				s.client.Set(key, updated)
			}
		}
	}
	return nil
}

// CancelQueries is a no-op: sturdyc deduplicates in-flight fetches itself
// and offers no cancellation handle for them.
func (s *sturdycCache) CancelQueries(context.Context, cache.Key) error {
	return nil
}

// validateFetchFn checks that fetchFn has the shape func(context.Context)
// (T, error) before we hand it to reflection.
func validateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return fmt.Errorf("cacheinfra: fetchFn cannot be nil")
	}

	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("cacheinfra: fetchFn must be a function, got %T", fetchFn)
	}
	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return fmt.Errorf("cacheinfra: fetchFn must have signature func(context.Context) (T, error)")
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	if !fnType.In(0).Implements(contextType) {
		return fmt.Errorf("cacheinfra: fetchFn first parameter must be context.Context")
	}
	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errorType) {
		return fmt.Errorf("cacheinfra: fetchFn second return value must be error")
	}
	return nil
}

// callFetchFn invokes a pre-validated fetchFn, erasing its concrete result
// type. The direct assertion covers the common case without reflection.
func callFetchFn(ctx context.Context, fetchFn any) (any, error) {
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	if v := results[0]; v.IsValid() && v.CanInterface() {
		result = v.Interface()
	}

	var err error
	if v := results[1]; v.IsValid() && !v.IsNil() {
		err = v.Interface().(error)
	}
	return result, err
}
