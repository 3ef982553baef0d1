// Package metrics exposes the client's Prometheus instrumentation. All
// counters are optional at call sites: a nil *Metrics disables collection
// without branching at every caller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters shared by the invalidation router, the list
// accumulator and the identity cache.
type Metrics struct {
	// InvalidatedKeys counts query key prefixes invalidated, by entity kind.
	InvalidatedKeys *prometheus.CounterVec

	// InvalidationErrors counts cache backend failures during fan-out.
	// These are best-effort and never fail the mutation, so the counter is
	// the only place they surface besides logs.
	InvalidationErrors prometheus.Counter

	// PagesFetched counts pages merged into list accumulators.
	PagesFetched prometheus.Counter

	// PageFetchErrors counts failed page loads.
	PageFetchErrors prometheus.Counter

	// IdentityReused counts view models served with unchanged identity.
	IdentityReused prometheus.Counter

	// IdentityRebuilt counts view models recomputed after a version change.
	IdentityRebuilt prometheus.Counter
}

// New registers the client metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		InvalidatedKeys: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propkit",
			Subsystem: "cache",
			Name:      "invalidated_keys_total",
			Help:      "Query key prefixes invalidated after mutations, by entity kind.",
		}, []string{"kind"}),
		InvalidationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "propkit",
			Subsystem: "cache",
			Name:      "invalidation_errors_total",
			Help:      "Cache backend failures during invalidation fan-out.",
		}),
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "propkit",
			Subsystem: "pagelist",
			Name:      "pages_fetched_total",
			Help:      "Pages merged into list accumulators.",
		}),
		PageFetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "propkit",
			Subsystem: "pagelist",
			Name:      "page_fetch_errors_total",
			Help:      "Failed page loads.",
		}),
		IdentityReused: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "propkit",
			Subsystem: "pagelist",
			Name:      "identity_reused_total",
			Help:      "View models served with unchanged object identity.",
		}),
		IdentityRebuilt: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "propkit",
			Subsystem: "pagelist",
			Name:      "identity_rebuilt_total",
			Help:      "View models recomputed after a version marker change.",
		}),
	}
}

// IncInvalidated records one invalidated prefix for a kind. Safe on nil.
func (m *Metrics) IncInvalidated(kind string) {
	if m == nil {
		return
	}
	m.InvalidatedKeys.WithLabelValues(kind).Inc()
}

// IncInvalidationError records a backend failure. Safe on nil.
func (m *Metrics) IncInvalidationError() {
	if m == nil {
		return
	}
	m.InvalidationErrors.Inc()
}

// IncPageFetched records a merged page. Safe on nil.
func (m *Metrics) IncPageFetched() {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
}

// IncPageFetchError records a failed page load. Safe on nil.
func (m *Metrics) IncPageFetchError() {
	if m == nil {
		return
	}
	m.PageFetchErrors.Inc()
}

// IncIdentityReused records an identity-stable view model hit. Safe on nil.
func (m *Metrics) IncIdentityReused() {
	if m == nil {
		return
	}
	m.IdentityReused.Inc()
}

// IncIdentityRebuilt records a recomputed view model. Safe on nil.
func (m *Metrics) IncIdentityRebuilt() {
	if m == nil {
		return
	}
	m.IdentityRebuilt.Inc()
}
