// Package querykeys is the single registry of query key namespaces. Every
// cached surface of the client builds its keys here, so the invalidation
// fan-out and the read paths can never drift apart on key shape.
package querykeys

import (
	"github.com/propkit/client-go/cache"
)

// Namespace roots. Kept private; callers go through the builders so key
// shapes stay consistent.
const (
	nsProperties      = "properties"
	nsUnits           = "units"
	nsJobs            = "jobs"
	nsServiceRequests = "serviceRequests"
	nsInspections     = "inspections"
	nsTenants         = "tenants"
	nsNotifications   = "notifications"
	nsDashboard       = "dashboard"
	nsUsers           = "users"
	nsAuth            = "auth"
)

var filterSerializer = cache.NewSegmentSerializer()

// FilterSegment reduces a list filter descriptor to its deterministic key
// segment. Exposed so list views and tests build the same segment the
// registry does.
func FilterSegment(filter any) string {
	return filterSerializer.Segment(filter)
}

// Properties

// PropertyList covers every cached property list; as a prefix it also
// covers filtered variants built by PropertyListFiltered.
func PropertyList() cache.Key { return cache.NewKey(nsProperties, "list") }

// PropertyListFiltered scopes the property list by a filter descriptor.
func PropertyListFiltered(filter any) cache.Key {
	return cache.NewKey(nsProperties, "list", FilterSegment(filter))
}

// PropertyOptions is the lightweight id/name set backing select inputs.
func PropertyOptions() cache.Key { return cache.NewKey(nsProperties, "options") }

func PropertyDetail(id string) cache.Key { return cache.NewKey(nsProperties, "detail", id) }

// PropertyUnits is the unit collection embedded in a property screen.
func PropertyUnits(id string) cache.Key { return cache.NewKey(nsProperties, "units", id) }

func PropertyActivity(id string) cache.Key { return cache.NewKey(nsProperties, "activity", id) }

// Units

// UnitListAll covers the cross-property unit list and its filtered variants.
func UnitListAll() cache.Key { return cache.NewKey(nsUnits, "list") }

func UnitListFiltered(filter any) cache.Key {
	return cache.NewKey(nsUnits, "list", FilterSegment(filter))
}

// UnitsByProperty is one property's unit list.
func UnitsByProperty(propertyID string) cache.Key {
	return cache.NewKey(nsUnits, "byProperty", propertyID)
}

func UnitDetail(id string) cache.Key      { return cache.NewKey(nsUnits, "detail", id) }
func UnitTenants(id string) cache.Key     { return cache.NewKey(nsUnits, "tenants", id) }
func UnitJobs(id string) cache.Key        { return cache.NewKey(nsUnits, "jobs", id) }
func UnitInspections(id string) cache.Key { return cache.NewKey(nsUnits, "inspections", id) }
func UnitServiceRequests(id string) cache.Key {
	return cache.NewKey(nsUnits, "serviceRequests", id)
}

// Jobs

func JobList() cache.Key { return cache.NewKey(nsJobs, "list") }

func JobListFiltered(filter any) cache.Key {
	return cache.NewKey(nsJobs, "list", FilterSegment(filter))
}

// JobsByRole covers every role-scoped job view (technician, owner, tenant)
// when used as a prefix.
func JobsByRole() cache.Key { return cache.NewKey(nsJobs, "byRole") }

func JobsForRole(role string) cache.Key { return cache.NewKey(nsJobs, "byRole", role) }

func JobDetail(id string) cache.Key   { return cache.NewKey(nsJobs, "detail", id) }
func JobComments(id string) cache.Key { return cache.NewKey(nsJobs, "comments", id) }
func JobPhotos(id string) cache.Key   { return cache.NewKey(nsJobs, "photos", id) }
func JobAudit(id string) cache.Key    { return cache.NewKey(nsJobs, "audit", id) }

// Service requests

func ServiceRequestList() cache.Key { return cache.NewKey(nsServiceRequests, "list") }

func ServiceRequestListFiltered(filter any) cache.Key {
	return cache.NewKey(nsServiceRequests, "list", FilterSegment(filter))
}

func ServiceRequestsByRole() cache.Key { return cache.NewKey(nsServiceRequests, "byRole") }

func ServiceRequestsForRole(role string) cache.Key {
	return cache.NewKey(nsServiceRequests, "byRole", role)
}

func ServiceRequestDetail(id string) cache.Key {
	return cache.NewKey(nsServiceRequests, "detail", id)
}

func ServiceRequestComments(id string) cache.Key {
	return cache.NewKey(nsServiceRequests, "comments", id)
}

func ServiceRequestPhotos(id string) cache.Key {
	return cache.NewKey(nsServiceRequests, "photos", id)
}

func ServiceRequestAudit(id string) cache.Key {
	return cache.NewKey(nsServiceRequests, "audit", id)
}

// Inspections

func InspectionList() cache.Key { return cache.NewKey(nsInspections, "list") }

func InspectionListFiltered(filter any) cache.Key {
	return cache.NewKey(nsInspections, "list", FilterSegment(filter))
}

func InspectionsByRole() cache.Key { return cache.NewKey(nsInspections, "byRole") }

func InspectionsForRole(role string) cache.Key {
	return cache.NewKey(nsInspections, "byRole", role)
}

func InspectionDetail(id string) cache.Key { return cache.NewKey(nsInspections, "detail", id) }
func InspectionRooms(id string) cache.Key  { return cache.NewKey(nsInspections, "rooms", id) }
func InspectionIssues(id string) cache.Key { return cache.NewKey(nsInspections, "issues", id) }
func InspectionPhotos(id string) cache.Key { return cache.NewKey(nsInspections, "photos", id) }
func InspectionAudit(id string) cache.Key  { return cache.NewKey(nsInspections, "audit", id) }

// Tenants

func TenantList() cache.Key { return cache.NewKey(nsTenants, "list") }

func TenantsByUnit(unitID string) cache.Key {
	return cache.NewKey(nsTenants, "byUnit", unitID)
}

// Notifications

func NotificationList() cache.Key        { return cache.NewKey(nsNotifications, "list") }
func NotificationUnreadCount() cache.Key { return cache.NewKey(nsNotifications, "unreadCount") }

// Dashboard

func DashboardStats() cache.Key    { return cache.NewKey(nsDashboard, "stats") }
func DashboardActivity() cache.Key { return cache.NewKey(nsDashboard, "activity") }

// Users

func UserList() cache.Key       { return cache.NewKey(nsUsers, "list") }
func TechnicianList() cache.Key { return cache.NewKey(nsUsers, "technicians") }

func UserDetail(id string) cache.Key  { return cache.NewKey(nsUsers, "detail", id) }
func AuthProfile(id string) cache.Key { return cache.NewKey(nsAuth, "profile", id) }
