// Package invalidation keeps the query cache consistent after mutations.
//
// # Fan-out table
//
// Each entity kind owns a fixed set of key prefixes invalidated together.
// Kind-wide prefixes always fire; id- and parent-scoped prefixes fire only
// when the corresponding identifier is present in the Directive.
//
//	property:        properties::list, properties::options, dashboard::stats
//	                 +id: detail, units, activity
//	unit:            units::list, dashboard::stats
//	                 +propertyID: units::byProperty, properties::detail, properties::units
//	                 +id: detail, tenants, jobs, inspections
//	job:             jobs::list, jobs::byRole, dashboard::stats, dashboard::activity
//	                 +id: detail, comments, photos, audit   +unitID: units::jobs
//	serviceRequest:  serviceRequests::list, serviceRequests::byRole,
//	                 dashboard::stats, dashboard::activity
//	                 +id: detail, comments, photos, audit   +unitID: units::serviceRequests
//	inspection:      inspections::list, inspections::byRole,
//	                 dashboard::stats, dashboard::activity
//	                 +id: detail, rooms, issues, photos, audit   +unitID: units::inspections
//	tenant:          tenants::list, dashboard::stats
//	                 +unitID: tenants::byUnit, units::tenants, units::detail
//	notification:    notifications::list, notifications::unreadCount
//	dashboard:       dashboard::stats, dashboard::activity
//	user:            users::list, users::technicians
//	                 +id: users::detail, auth::profile
//
// # Safety rule
//
// A scoped key is emitted only when its identifier is present. A key built
// from a missing id would contain an empty segment, which either silently
// fails to invalidate the intended entry or degenerates into a prefix that
// matches every entry of that namespace. The batch collector drops such keys
// and the kind-wide invalidation still proceeds.
//
// # Error policy
//
// Invalidation runs after the mutation already succeeded server-side, so
// cache backend failures are logged and counted but never returned to the
// mutation flow.
package invalidation
