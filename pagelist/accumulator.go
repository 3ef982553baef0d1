package pagelist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/propkit/client-go/metrics"
)

// Accumulator merges successive pages into one growing list. It guarantees:
//
//   - at most one fetch in flight; re-entrant LoadMore calls are dropped
//   - items appear in fetch-issue order, merges keyed by requested offset
//   - the offset advances by items actually received, never by page index
//   - responses arriving after Close or Reset are discarded
//
// Safe for concurrent use.
type Accumulator[T any] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	pageSize int

	items    []T
	offset   int
	gen      int
	hasNext  bool
	inFlight bool
	loaded   bool
	closed   bool
	lastErr  error

	notices *NoticeStore
	log     *slog.Logger
	metrics *metrics.Metrics
}

// AccumulatorOption configures an Accumulator.
type AccumulatorOption[T any] func(*Accumulator[T])

// WithPageSize overrides DefaultPageSize.
func WithPageSize[T any](size int) AccumulatorOption[T] {
	return func(a *Accumulator[T]) {
		if size > 0 {
			a.pageSize = size
		}
	}
}

// WithNotices attaches a notice store for load errors.
func WithNotices[T any](n *NoticeStore) AccumulatorOption[T] {
	return func(a *Accumulator[T]) { a.notices = n }
}

// WithAccumulatorLogger sets the logger.
func WithAccumulatorLogger[T any](log *slog.Logger) AccumulatorOption[T] {
	return func(a *Accumulator[T]) {
		if log != nil {
			a.log = log
		}
	}
}

// WithAccumulatorMetrics attaches Prometheus counters.
func WithAccumulatorMetrics[T any](m *metrics.Metrics) AccumulatorOption[T] {
	return func(a *Accumulator[T]) { a.metrics = m }
}

// NewAccumulator builds an Accumulator over the given fetch function.
func NewAccumulator[T any](fetch FetchFunc[T], opts ...AccumulatorOption[T]) *Accumulator[T] {
	a := &Accumulator[T]{
		fetch:    fetch,
		pageSize: DefaultPageSize,
		hasNext:  true,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadMore fetches the next page and appends it. It is a no-op when a fetch
// is already in flight, when the list is exhausted, or after Close. The
// error is also recorded as an auto-expiring notice; previously accumulated
// items are never cleared by a failed load.
func (a *Accumulator[T]) LoadMore(ctx context.Context) error {
	a.mu.Lock()
	if a.inFlight || a.closed || (a.loaded && !a.hasNext) {
		a.mu.Unlock()
		return nil
	}
	a.inFlight = true
	requestedOffset := a.offset
	requestedGen := a.gen
	limit := a.pageSize
	fetch := a.fetch
	a.mu.Unlock()

	page, err := fetch(ctx, requestedOffset, limit)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false

	// Torn down mid-request: discard silently, not an error.
	if a.closed {
		return nil
	}
	// A Reset raced this fetch; the response belongs to a previous filter
	// generation and must not be merged.
	if requestedGen != a.gen {
		a.log.Debug("pagelist: discarding stale page",
			slog.Int("requestedOffset", requestedOffset),
			slog.Int("generation", requestedGen))
		return nil
	}

	if err != nil {
		a.lastErr = err
		a.metrics.IncPageFetchError()
		if a.notices != nil {
			a.notices.Add(err.Error())
		}
		a.log.Warn("pagelist: page load failed",
			slog.Int("offset", requestedOffset),
			slog.Any("error", err))
		return err
	}

	a.items = append(a.items, page.Items...)
	a.offset += len(page.Items)
	a.hasNext = page.HasMore
	a.loaded = true
	a.lastErr = nil
	a.metrics.IncPageFetched()
	return nil
}

// Items returns a copy of the accumulated list in fetch order.
func (a *Accumulator[T]) Items() []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]T, len(a.items))
	copy(out, a.items)
	return out
}

// Len reports the number of accumulated items.
func (a *Accumulator[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// HasNextPage reports whether more pages exist. True before the first load.
func (a *Accumulator[T]) HasNextPage() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.closed && a.hasNext
}

// IsFetching reports whether a page load is in flight.
func (a *Accumulator[T]) IsFetching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// IsLoading reports whether the initial page is still being fetched.
func (a *Accumulator[T]) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight && !a.loaded
}

// Err returns the error from the most recent failed load, cleared by the
// next successful one.
func (a *Accumulator[T]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Reset discards the accumulated list and restarts pagination from offset
// zero. Called when the filter/search/sort criteria change: the accumulated
// list is a derived view of exactly one filter combination at a time. A
// response from before the reset is discarded by the generation check in
// LoadMore.
func (a *Accumulator[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

func (a *Accumulator[T]) reset() {
	a.items = nil
	a.offset = 0
	a.gen++
	a.hasNext = true
	a.loaded = false
	a.lastErr = nil
}

// SetFetch swaps the fetch function and resets. Used when the filter is
// baked into the fetch closure.
func (a *Accumulator[T]) SetFetch(fetch FetchFunc[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetch = fetch
	a.reset()
}

// Close tears the accumulator down. Late responses are discarded; further
// LoadMore calls are no-ops.
func (a *Accumulator[T]) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.items = nil
}
