package pagelist

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/propkit/client-go/metrics"
)

// Materializer turns fetched records into view models while keeping object
// identity stable across refetches. For a given id the same *V is returned
// as long as the version marker is unchanged; a changed marker forces a
// full rebuild and replaces the entry. Ids absent from the latest fetch are
// evicted, so the cache never outgrows the list it serves.
//
// The identity discipline exists so reference-equality render-skip checks
// in the consuming UI keep working; it is scoped to one list view and must
// be Reset on view teardown.
type Materializer[T any, V any] struct {
	// ID extracts the stable entity id. Required.
	ID func(T) string

	// Version extracts the version marker (typically UpdatedAt). A nil
	// Version, or an empty marker, disables reuse for that item: it is
	// treated as always changed and rebuilt on every pass.
	Version func(T) string

	// Build computes the full view model, derived fields included. Required.
	Build func(T) *V

	// Metrics optionally counts reuse vs rebuild.
	Metrics *metrics.Metrics

	entries *xsync.MapOf[string, identityEntry[V]]
}

type identityEntry[V any] struct {
	version string
	value   *V
}

// NewMaterializer builds a Materializer with the given extractors.
func NewMaterializer[T any, V any](
	id func(T) string,
	version func(T) string,
	build func(T) *V,
) *Materializer[T, V] {
	return &Materializer[T, V]{
		ID:      id,
		Version: version,
		Build:   build,
		entries: xsync.NewMapOf[string, identityEntry[V]](),
	}
}

// Materialize processes one full fetch result. Items with an unchanged
// version marker are returned by cached reference; everything else is
// rebuilt. After the pass, entries whose id no longer appears are evicted.
func (m *Materializer[T, V]) Materialize(items []T) []*V {
	if m.entries == nil {
		m.entries = xsync.NewMapOf[string, identityEntry[V]]()
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]*V, 0, len(items))

	for _, item := range items {
		id := m.ID(item)
		seen[id] = struct{}{}

		var version string
		if m.Version != nil {
			version = m.Version(item)
		}

		if version != "" {
			if entry, ok := m.entries.Load(id); ok && entry.version == version {
				m.Metrics.IncIdentityReused()
				out = append(out, entry.value)
				continue
			}
		}

		built := m.Build(item)
		m.entries.Store(id, identityEntry[V]{version: version, value: built})
		m.Metrics.IncIdentityRebuilt()
		out = append(out, built)
	}

	// Evict ids that vanished from the list; bounds growth across fetch
	// cycles.
	m.entries.Range(func(id string, _ identityEntry[V]) bool {
		if _, ok := seen[id]; !ok {
			m.entries.Delete(id)
		}
		return true
	})

	return out
}

// Cached returns the cached view model for an id, if present.
func (m *Materializer[T, V]) Cached(id string) (*V, bool) {
	if m.entries == nil {
		return nil, false
	}
	entry, ok := m.entries.Load(id)
	if !ok {
		return nil, false
	}
	return entry.value, true
}

// Size reports the number of cached entries.
func (m *Materializer[T, V]) Size() int {
	if m.entries == nil {
		return 0
	}
	return m.entries.Size()
}

// Reset clears the cache. Called on view teardown.
func (m *Materializer[T, V]) Reset() {
	if m.entries != nil {
		m.entries.Clear()
	}
}
