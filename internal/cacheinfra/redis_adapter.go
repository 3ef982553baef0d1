package cacheinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/propkit/client-go/cache"
)

const redisScanBatch = 256

// redisCache implements cache.QueryCache over Redis for deployments that
// share one query cache across processes. Values are stored as JSON, so
// reads hand back json.RawMessage; cache.Decode and the typed GetOrFetch
// wrapper unmarshal transparently.
type redisCache struct {
	rdb       *redis.Client
	keyPrefix string
	cfg       cache.Config
}

var _ cache.QueryCache = (*redisCache)(nil)

// NewRedisCache builds a Redis-backed query cache. keyPrefix namespaces
// this client's entries within a shared Redis instance.
func NewRedisCache(rdb *redis.Client, keyPrefix string, cfg cache.Config) (cache.QueryCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cacheinfra: %w", err)
	}
	if rdb == nil {
		return nil, fmt.Errorf("cacheinfra: redis client cannot be nil")
	}
	return &redisCache{rdb: rdb, keyPrefix: keyPrefix, cfg: cfg}, nil
}

func (r *redisCache) storageKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + cache.KeySeparator + key
}

func (r *redisCache) logicalKey(stored string) string {
	if r.keyPrefix == "" {
		return stored
	}
	return stored[len(r.keyPrefix)+len(cache.KeySeparator):]
}

func (r *redisCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	data, err := r.rdb.Get(ctx, r.storageKey(key)).Bytes()
	switch {
	case err == nil:
		return json.RawMessage(data), nil
	case !errors.Is(err, redis.Nil):
		// Redis unreachable: degrade to fetching from the source rather
		// than failing the read.
		value, fetchErr := callFetchFn(ctx, fetchFn)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return value, nil
	}

	value, err := callFetchFn(ctx, fetchFn)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cacheinfra: encode cached value: %w", err)
	}
	if err := r.rdb.Set(ctx, r.storageKey(key), payload, r.cfg.TTL).Err(); err != nil {
		return value, nil // best-effort write-back
	}
	return value, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cacheinfra: encode cached value: %w", err)
	}
	return r.rdb.Set(ctx, r.storageKey(key), payload, r.cfg.TTL).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.storageKey(key)).Err()
}

func (r *redisCache) InvalidateQueries(ctx context.Context, prefix cache.Key) error {
	if !prefix.Valid() {
		return fmt.Errorf("cacheinfra: invalid invalidation prefix %q", prefix.String())
	}
	return r.scanPrefix(ctx, prefix, func(stored string) error {
		return r.rdb.Del(ctx, stored).Err()
	})
}

func (r *redisCache) GetQueriesData(ctx context.Context, prefix cache.Key) ([]cache.QueryData, error) {
	if !prefix.Valid() {
		return nil, fmt.Errorf("cacheinfra: invalid query prefix %q", prefix.String())
	}
	var out []cache.QueryData
	err := r.scanPrefix(ctx, prefix, func(stored string) error {
		data, err := r.rdb.Get(ctx, stored).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil // expired between scan and read
		}
		if err != nil {
			return err
		}
		out = append(out, cache.QueryData{
			Key:  cache.SplitKey(r.logicalKey(stored)),
			Data: json.RawMessage(data),
		})
		return nil
	})
	return out, err
}

func (r *redisCache) SetQueriesData(ctx context.Context, prefix cache.Key, update func(any) any) error {
	if !prefix.Valid() {
		return fmt.Errorf("cacheinfra: invalid query prefix %q", prefix.String())
	}
	return r.scanPrefix(ctx, prefix, func(stored string) error {
		data, err := r.rdb.Get(ctx, stored).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		updated := update(json.RawMessage(data))
		if updated == nil {
			return nil
		}
		payload, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("cacheinfra: encode updated value: %w", err)
		}
		return r.rdb.Set(ctx, stored, payload, redis.KeepTTL).Err()
	})
}

// CancelQueries is a no-op: Redis has no notion of the client's in-flight
// fetches.
func (r *redisCache) CancelQueries(context.Context, cache.Key) error {
	return nil
}

// scanPrefix walks every stored key under a logical prefix. The MATCH
// pattern narrows the scan server-side; the segment-wise check rejects the
// pattern's false positives (e.g. "units::u10" under "units::u1*").
func (r *redisCache) scanPrefix(ctx context.Context, prefix cache.Key, visit func(stored string) error) error {
	pattern := r.storageKey(prefix.String()) + "*"

	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, redisScanBatch).Result()
		if err != nil {
			return fmt.Errorf("cacheinfra: redis scan: %w", err)
		}
		for _, stored := range keys {
			if !cache.MatchesPrefix(r.logicalKey(stored), prefix) {
				continue
			}
			if err := visit(stored); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
