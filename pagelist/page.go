// Package pagelist implements the paginated list accumulator used by the
// client's infinite-scroll views: fixed-size pages merged into one logical
// collection, an identity-stable view-model cache keyed by version marker,
// and auto-expiring error notices.
package pagelist

import "context"

// DefaultPageSize is the page size list views fetch with unless configured
// otherwise.
const DefaultPageSize = 50

// Page is one fetched slice of a logical list. Pages of the same list are
// concatenable in fetch order; HasMore=false is terminal.
type Page[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"hasMore"`
	Offset  int  `json:"offset"`
}

// FetchFunc loads one page at the given offset. The offset is the count of
// items already accumulated, not a page index, so server-side inserts and
// deletes between fetches do not skip or duplicate items.
type FetchFunc[T any] func(ctx context.Context, offset, limit int) (Page[T], error)
