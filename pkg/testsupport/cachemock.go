package testsupport

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/propkit/client-go/cache"
)

// RecordingCache is an in-memory cache.QueryCache for tests. It records
// every invalidated prefix and serves entries from a plain map, so tests
// can assert fan-out sets and snapshot/restore behaviour without a real
// backend.
type RecordingCache struct {
	mu          sync.Mutex
	entries     map[string]any
	invalidated []cache.Key

	// FailInvalidation, when set, makes InvalidateQueries return the error.
	FailInvalidation error
}

// NewRecordingCache creates an empty RecordingCache.
func NewRecordingCache() *RecordingCache {
	return &RecordingCache{entries: make(map[string]any)}
}

// Invalidated returns a copy of the recorded prefixes in call order.
func (c *RecordingCache) Invalidated() []cache.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cache.Key, len(c.invalidated))
	copy(out, c.invalidated)
	return out
}

// InvalidatedStrings returns the recorded prefixes in string form.
func (c *RecordingCache) InvalidatedStrings() []string {
	keys := c.Invalidated()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// Seed stores an entry directly, bypassing fetch.
func (c *RecordingCache) Seed(key cache.Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = value
}

// Entry returns the stored value for a key.
func (c *RecordingCache) Entry(key cache.Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key.String()]
	return v, ok
}

// Len reports the number of stored entries.
func (c *RecordingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RecordingCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := callFetch(ctx, fetchFn)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
	return v, nil
}

// callFetch invokes a cache.FetchFn[T] of any T via reflection, mirroring
// what the real backends accept.
func callFetch(ctx context.Context, fetchFn any) (any, error) {
	fn := reflect.ValueOf(fetchFn)
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("testsupport: fetchFn must be a function, got %T", fetchFn)
	}
	t := fn.Type()
	if t.NumIn() != 1 || t.NumOut() != 2 || !t.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		return nil, fmt.Errorf("testsupport: fetchFn must be func(context.Context) (T, error), got %T", fetchFn)
	}

	results := fn.Call([]reflect.Value{reflect.ValueOf(ctx)})
	if !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

func (c *RecordingCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *RecordingCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *RecordingCache) InvalidateQueries(_ context.Context, prefix cache.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailInvalidation != nil {
		return c.FailInvalidation
	}
	c.invalidated = append(c.invalidated, prefix)
	for stored := range c.entries {
		if cache.MatchesPrefix(stored, prefix) {
			delete(c.entries, stored)
		}
	}
	return nil
}

func (c *RecordingCache) GetQueriesData(_ context.Context, prefix cache.Key) ([]cache.QueryData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []cache.QueryData
	for stored, v := range c.entries {
		if cache.MatchesPrefix(stored, prefix) {
			out = append(out, cache.QueryData{Key: cache.SplitKey(stored), Data: v})
		}
	}
	return out, nil
}

func (c *RecordingCache) SetQueriesData(_ context.Context, prefix cache.Key, update func(any) any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for stored, v := range c.entries {
		if cache.MatchesPrefix(stored, prefix) {
			if updated := update(v); updated != nil {
				c.entries[stored] = updated
			}
		}
	}
	return nil
}

func (c *RecordingCache) CancelQueries(_ context.Context, _ cache.Key) error {
	return nil
}
