// Package cache defines the query cache contracts shared by the rest of the
// client: the composite Key model, deterministic segment serialization for
// filter descriptors, and the QueryCache interface that backends in
// internal/cacheinfra implement.
//
// # Keys
//
// A Key is an ordered list of segments, namespace first:
//
//	querykeys.PropertyDetail("p1") // {"properties", "detail", "p1"}
//
// Keys compare and match by content. Prefix operations are segment-wise, so
// invalidating {"units", "u1"} covers every unit u1 sub-resource without
// touching unit u10. Keys containing an empty segment are invalid and must
// be skipped by callers; sending one to a backend would either miss its
// target or collapse into an overly broad prefix.
//
// # Filter descriptors
//
// List views scope their keys by a filter descriptor (search text, status,
// sort). SegmentSerializer reduces a descriptor to one deterministic
// segment: maps are emitted with sorted keys, so two descriptors with the
// same content always land on the same cache entry regardless of
// construction order.
//
// # Reading through the cache
//
//	props, err := cache.GetOrFetch(ctx, qc, querykeys.PropertyDetail(id),
//		func(ctx context.Context) (entity.Property, error) {
//			return api.GetProperty(ctx, id)
//		})
//
// The typed wrapper also decodes byte-oriented backends that store raw JSON.
//
// For the entity-relationship fan-out that keeps this cache consistent after
// mutations, see the invalidation package.
package cache
