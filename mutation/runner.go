// Package mutation wraps network mutations with the cache bookkeeping that
// must follow them: invalidation fan-out on success, nothing on failure,
// and optimistic local updates with symmetric rollback for delete flows.
package mutation

import (
	"context"
	"log/slog"

	"github.com/propkit/client-go/entity"
	"github.com/propkit/client-go/invalidation"
)

// Extractors derives the invalidation directive for a mutation from its
// input and its response. Both callbacks receive the two values; the
// response is authoritative for server-generated ids, so extractors should
// prefer it and fall back to the input (see Coalesce).
type Extractors[In, Out any] struct {
	Kind     entity.Kind
	EntityID func(in In, out Out) string
	Parents  func(in In, out Out) entity.ParentIDs
}

// Runner executes mutations and drives the invalidation router afterwards.
type Runner struct {
	router *invalidation.Router
	log    *slog.Logger
}

// NewRunner builds a Runner over the given router.
func NewRunner(router *invalidation.Router, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{router: router, log: log}
}

// Run executes the mutation and, on success, invalidates the affected query
// keys. On failure the error is returned unchanged and no invalidation
// happens: the server state is assumed unchanged, so the cache stays as-is.
//
// Go methods cannot carry type parameters, so Run is a package-level
// function taking the Runner.
func Run[In, Out any](
	ctx context.Context,
	r *Runner,
	in In,
	exec func(ctx context.Context, in In) (Out, error),
	ex Extractors[In, Out],
) (Out, error) {
	out, err := exec(ctx, in)
	if err != nil {
		return out, err
	}

	d := invalidation.Directive{Kind: ex.Kind}
	if ex.EntityID != nil {
		d.EntityID = ex.EntityID(in, out)
	}
	if ex.Parents != nil {
		d.Parents = ex.Parents(in, out)
	}

	r.router.Invalidate(ctx, d)
	if extra := invalidateKeysFromContext(ctx); len(extra) > 0 {
		r.router.InvalidateKeys(ctx, extra)
	}
	return out, nil
}

// Coalesce returns the first non-empty id. Extractors use it to prefer the
// response id over the input id.
func Coalesce(ids ...string) string {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}
