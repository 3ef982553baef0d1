package mutation

import (
	"context"
	"log/slog"

	"github.com/propkit/client-go/cache"
	"github.com/propkit/client-go/pagelist"
)

// RunOptimisticRemoval deletes an entity server-side while removing it from
// cached lists immediately, so the UI drops the row without waiting for the
// round trip. The sequence is snapshot-before-mutate, restore-on-error:
//
//  1. cancel in-flight fetches under the list prefix (best-effort)
//  2. snapshot every cached list under the prefix
//  3. remove matching items locally
//  4. run the delete; on failure, restore the snapshot verbatim
//
// Invalidation after a successful delete is the caller's job (normally via
// Run); this helper only manages the optimistic window.
func RunOptimisticRemoval[T any](
	ctx context.Context,
	qc cache.QueryCache,
	listPrefix cache.Key,
	match func(T) bool,
	exec func(ctx context.Context) error,
) error {
	log := slog.Default()

	if err := qc.CancelQueries(ctx, listPrefix); err != nil {
		log.Debug("optimistic removal: cancel queries", slog.Any("error", err))
	}

	snapshot, err := qc.GetQueriesData(ctx, listPrefix)
	if err != nil {
		// Without a snapshot there is nothing safe to roll back to, so run
		// the mutation without the optimistic window.
		log.Warn("optimistic removal: snapshot unavailable", slog.Any("error", err))
		return exec(ctx)
	}

	if err := qc.SetQueriesData(ctx, listPrefix, RemoveFromLists(match)); err != nil {
		log.Warn("optimistic removal: local update failed", slog.Any("error", err))
	}

	if err := exec(ctx); err != nil {
		for _, q := range snapshot {
			if restoreErr := qc.Set(ctx, q.Key.String(), q.Data); restoreErr != nil {
				log.Warn("optimistic removal: rollback failed",
					slog.String("key", q.Key.String()),
					slog.Any("error", restoreErr))
			}
		}
		return err
	}
	return nil
}

// RemoveFromLists builds a SetQueriesData updater that drops matching items
// from cached list shapes: plain slices and accumulated pages. Unrecognized
// shapes are left untouched.
func RemoveFromLists[T any](match func(T) bool) func(any) any {
	return func(data any) any {
		switch v := data.(type) {
		case []T:
			return filterItems(v, match)
		case pagelist.Page[T]:
			v.Items = filterItems(v.Items, match)
			return v
		default:
			return nil
		}
	}
}

func filterItems[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}
