package pagelist

import (
	"context"
)

// View composes an Accumulator, a Materializer and a NoticeStore into the
// surface a list screen consumes: load-more pagination, identity-stable
// rows and auto-expiring error notices. One View per mounted list; Close on
// teardown.
type View[T any, V any] struct {
	makeFetch func(filter any) FetchFunc[T]
	acc       *Accumulator[T]
	mat       *Materializer[T, V]
	notices   *NoticeStore
}

// NewView builds a View. makeFetch binds a filter descriptor into a page
// fetcher; it is invoked once up front with a nil filter and again on every
// SetFilter.
func NewView[T any, V any](
	makeFetch func(filter any) FetchFunc[T],
	mat *Materializer[T, V],
	opts ...AccumulatorOption[T],
) *View[T, V] {
	notices := NewNoticeStore(DefaultNoticeTTL)
	opts = append([]AccumulatorOption[T]{WithNotices[T](notices)}, opts...)

	return &View[T, V]{
		makeFetch: makeFetch,
		acc:       NewAccumulator(makeFetch(nil), opts...),
		mat:       mat,
		notices:   notices,
	}
}

// LoadMore fetches the next page. No-op while a fetch is in flight or when
// the list is exhausted.
func (v *View[T, V]) LoadMore(ctx context.Context) error {
	return v.acc.LoadMore(ctx)
}

// Items returns the accumulated rows as view models. Rows whose version
// marker is unchanged keep their object identity from the previous call.
func (v *View[T, V]) Items() []*V {
	return v.mat.Materialize(v.acc.Items())
}

// HasNextPage reports whether more pages exist.
func (v *View[T, V]) HasNextPage() bool { return v.acc.HasNextPage() }

// IsFetchingNextPage reports whether a page load is in flight.
func (v *View[T, V]) IsFetchingNextPage() bool { return v.acc.IsFetching() }

// IsLoading reports whether the initial page is still loading.
func (v *View[T, V]) IsLoading() bool { return v.acc.IsLoading() }

// Err returns the most recent load error, if any.
func (v *View[T, V]) Err() error { return v.acc.Err() }

// IsError reports whether the most recent load failed.
func (v *View[T, V]) IsError() bool { return v.acc.Err() != nil }

// Notices returns the active (undismissed, unexpired) error notices.
func (v *View[T, V]) Notices() []Notice { return v.notices.Active() }

// Dismiss removes a notice before it expires.
func (v *View[T, V]) Dismiss(id string) { v.notices.Dismiss(id) }

// SetFilter rebinds the fetcher to a new filter descriptor and restarts
// pagination from offset zero. The accumulated list is a view of exactly
// one filter combination at a time.
func (v *View[T, V]) SetFilter(filter any) {
	v.acc.SetFetch(v.makeFetch(filter))
}

// Refetch restarts pagination for the current filter and loads the first
// page.
func (v *View[T, V]) Refetch(ctx context.Context) error {
	v.acc.Reset()
	return v.acc.LoadMore(ctx)
}

// Close tears the view down: the accumulator discards late responses and
// the identity cache is cleared.
func (v *View[T, V]) Close() {
	v.acc.Close()
	v.mat.Reset()
}
