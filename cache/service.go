package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// FetchFn is the function signature QueryCache expects when fetching from
// the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// QueryData pairs a stored key with its cached value, as returned by
// QueryCache.GetQueriesData.
type QueryData struct {
	Key  Key
	Data any
}

// QueryCache is the process-wide query result cache the invalidation router
// and list views operate against. Prefix-taking methods interpret the prefix
// segment-wise: "units::u1" covers "units::u1::jobs" but not "units::u10".
//
// Implementations live in internal/cacheinfra; the in-memory sturdyc backend
// is the default, with a Redis backend available for shared deployments.
type QueryCache interface {
	// GetOrFetch returns the cached value for key, or runs fetchFn, stores
	// the result and returns it. fetchFn must be a FetchFn[T] for some T.
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)

	// Set stores a value directly. Used by optimistic flows to restore
	// snapshots.
	Set(ctx context.Context, key string, value any) error

	// Delete removes a single entry.
	Delete(ctx context.Context, key string) error

	// InvalidateQueries removes every entry under the given key prefix so
	// the next read refetches. Invalid prefixes are rejected, never
	// broadened.
	InvalidateQueries(ctx context.Context, prefix Key) error

	// GetQueriesData returns the current entries under a prefix. Used to
	// snapshot state before an optimistic update.
	GetQueriesData(ctx context.Context, prefix Key) ([]QueryData, error)

	// SetQueriesData applies update to every entry under a prefix. A nil
	// return from update leaves the entry unchanged.
	SetQueriesData(ctx context.Context, prefix Key, update func(data any) any) error

	// CancelQueries asks the backend to abandon in-flight fetches under a
	// prefix. Best-effort; backends without in-flight tracking may no-op.
	CancelQueries(ctx context.Context, prefix Key) error
}

// GetOrFetch is the type-safe wrapper over QueryCache.GetOrFetch. It also
// decodes byte-oriented backends (Redis) that hand back raw JSON instead of
// the concrete type.
func GetOrFetch[T any](ctx context.Context, qc QueryCache, key Key, fetchFn FetchFn[T]) (T, error) {
	var zero T
	if !key.Valid() {
		return zero, fmt.Errorf("cache: invalid query key %q", key.String())
	}

	result, err := qc.GetOrFetch(ctx, key.String(), fetchFn)
	if err != nil {
		return zero, err
	}
	return Decode[T](result)
}

// Decode converts a value returned by a QueryCache into T, unmarshalling
// raw JSON where the backend stores bytes.
func Decode[T any](result any) (T, error) {
	var zero T

	switch v := result.(type) {
	case T:
		return v, nil
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(v, &out); err != nil {
			return zero, fmt.Errorf("cache: decode cached value: %w", err)
		}
		return out, nil
	case []byte:
		var out T
		if err := json.Unmarshal(v, &out); err != nil {
			return zero, fmt.Errorf("cache: decode cached value: %w", err)
		}
		return out, nil
	case nil:
		return zero, nil
	default:
		return zero, fmt.Errorf("cache: cached value has type %T, want %T", result, zero)
	}
}
