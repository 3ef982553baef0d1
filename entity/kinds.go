// Package entity holds the domain model of the property-management API:
// the closed set of entity kinds the invalidation router dispatches on and
// the record types returned by the backend.
package entity

// Kind identifies which domain object type a mutation affected. The set is
// closed; the invalidation router keys its fan-out table on it and tests
// assert every kind has a handler.
type Kind string

const (
	KindProperty       Kind = "property"
	KindUnit           Kind = "unit"
	KindJob            Kind = "job"
	KindServiceRequest Kind = "serviceRequest"
	KindInspection     Kind = "inspection"
	KindTenant         Kind = "tenant"
	KindNotification   Kind = "notification"
	KindDashboard      Kind = "dashboard"
	KindUser           Kind = "user"
)

// Kinds lists every entity kind. Order is stable for deterministic
// iteration in tests and metrics.
func Kinds() []Kind {
	return []Kind{
		KindProperty,
		KindUnit,
		KindJob,
		KindServiceRequest,
		KindInspection,
		KindTenant,
		KindNotification,
		KindDashboard,
		KindUser,
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindProperty, KindUnit, KindJob, KindServiceRequest, KindInspection,
		KindTenant, KindNotification, KindDashboard, KindUser:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// ParentIDs carries the owning-entity identifiers a mutation knows about.
// Either field may be empty; scoped invalidations for an absent parent are
// skipped rather than emitted with a garbage segment.
type ParentIDs struct {
	PropertyID string
	UnitID     string
}
