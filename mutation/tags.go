package mutation

import (
	"context"

	"github.com/propkit/client-go/cache"
)

type invalidateKeysContextKey struct{}

// WithInvalidateKeys attaches extra key prefixes to the context. Run
// invalidates them after a successful mutation, on top of the kind's
// fan-out. Used by flows whose writes touch queries outside any one entity's
// table, such as bulk imports.
func WithInvalidateKeys(ctx context.Context, keys ...cache.Key) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(keys) == 0 {
		return ctx
	}

	combined := append(invalidateKeysFromContext(ctx), keys...)
	combined = dedupeKeys(combined)
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, invalidateKeysContextKey{}, combined)
}

func invalidateKeysFromContext(ctx context.Context) []cache.Key {
	if ctx == nil {
		return nil
	}
	if keys, ok := ctx.Value(invalidateKeysContextKey{}).([]cache.Key); ok {
		return append([]cache.Key(nil), keys...)
	}
	return nil
}

func dedupeKeys(keys []cache.Key) []cache.Key {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0:0]
	for _, k := range keys {
		if !k.Valid() {
			continue
		}
		s := k.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, k)
	}
	return out
}
