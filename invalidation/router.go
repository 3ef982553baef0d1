// Package invalidation maps a mutated entity to the full set of query key
// prefixes that must be refetched. The fan-out per kind is the contract that
// keeps every screen of the client consistent after a write; see doc.go for
// the table.
package invalidation

import (
	"context"
	"log/slog"

	"github.com/propkit/client-go/cache"
	"github.com/propkit/client-go/entity"
	"github.com/propkit/client-go/metrics"
	"github.com/propkit/client-go/querykeys"
)

// Directive describes what a successful mutation changed. EntityID and
// Parents are optional: when absent, only kind-wide keys are invalidated,
// never entity-scoped ones.
type Directive struct {
	Kind     entity.Kind
	EntityID string
	Parents  entity.ParentIDs
}

// fanoutFn appends the key prefixes to invalidate for one entity kind.
type fanoutFn func(b *batch, id string, parents entity.ParentIDs)

// Router drives the per-kind fan-out against a query cache. Invalidation is
// fire-and-forget: backend failures are logged and counted but never
// propagate, because the mutation that triggered them already succeeded
// server-side.
type Router struct {
	cache   cache.QueryCache
	log     *slog.Logger
	metrics *metrics.Metrics
	table   map[entity.Kind]fanoutFn
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for skipped keys and backend failures.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// NewRouter builds a Router over the given query cache.
func NewRouter(qc cache.QueryCache, opts ...Option) *Router {
	r := &Router{
		cache: qc,
		log:   slog.Default(),
		table: fanoutTable(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidate marks every cached query affected by the directive as stale.
// Unknown kinds and malformed scoped keys are skipped silently; this must
// never crash or fail the calling mutation flow.
func (r *Router) Invalidate(ctx context.Context, d Directive) {
	fanout, ok := r.table[d.Kind]
	if !ok {
		r.log.Warn("invalidation: unknown entity kind", slog.String("kind", d.Kind.String()))
		return
	}

	b := &batch{}
	fanout(b, d.EntityID, d.Parents)
	r.invalidateKeys(ctx, d.Kind.String(), b.keys)
}

// InvalidateKeys invalidates an explicit set of key prefixes, outside any
// kind's fan-out table. Callers use it for ad-hoc keys attached via
// mutation.WithInvalidateKeys. Invalid keys are skipped.
func (r *Router) InvalidateKeys(ctx context.Context, keys []cache.Key) {
	valid := keys[:0:0]
	for _, k := range keys {
		if k.Valid() {
			valid = append(valid, k)
		}
	}
	r.invalidateKeys(ctx, "adhoc", valid)
}

func (r *Router) invalidateKeys(ctx context.Context, kind string, keys []cache.Key) {
	for _, key := range keys {
		if err := r.cache.InvalidateQueries(ctx, key); err != nil {
			r.metrics.IncInvalidationError()
			r.log.Warn("invalidation: cache backend failure",
				slog.String("kind", kind),
				slog.String("key", key.String()),
				slog.Any("error", err))
			continue
		}
		r.metrics.IncInvalidated(kind)
	}
}

// Keys returns the key prefixes a directive would invalidate, without
// touching the cache. Used by tests and by callers that batch invalidations
// themselves.
func (r *Router) Keys(d Directive) []cache.Key {
	fanout, ok := r.table[d.Kind]
	if !ok {
		return nil
	}
	b := &batch{}
	fanout(b, d.EntityID, d.Parents)
	return b.keys
}

// batch collects fan-out keys, dropping any key with a missing segment.
// That guard is the core correctness rule: a key built from an absent id
// would either fail to match its target or collapse into a prefix that
// invalidates unrelated entries.
type batch struct {
	keys []cache.Key
}

// add appends kind-wide keys. These are built without interpolated ids and
// are expected to always be valid.
func (b *batch) add(keys ...cache.Key) {
	for _, k := range keys {
		if k.Valid() {
			b.keys = append(b.keys, k)
		}
	}
}

// addScoped appends an id-scoped key only when the id is present.
func (b *batch) addScoped(id string, build func(string) cache.Key) {
	if id == "" {
		return
	}
	if k := build(id); k.Valid() {
		b.keys = append(b.keys, k)
	}
}

// fanoutTable wires every entity kind to its fan-out. Coverage over
// entity.Kinds() is asserted by tests, which stands in for the exhaustive
// switch a closed enum would give us.
func fanoutTable() map[entity.Kind]fanoutFn {
	return map[entity.Kind]fanoutFn{
		entity.KindProperty:       propertyFanout,
		entity.KindUnit:           unitFanout,
		entity.KindJob:            jobFanout,
		entity.KindServiceRequest: serviceRequestFanout,
		entity.KindInspection:     inspectionFanout,
		entity.KindTenant:         tenantFanout,
		entity.KindNotification:   notificationFanout,
		entity.KindDashboard:      dashboardFanout,
		entity.KindUser:           userFanout,
	}
}

func propertyFanout(b *batch, id string, _ entity.ParentIDs) {
	b.add(
		querykeys.PropertyList(),
		querykeys.PropertyOptions(),
		querykeys.DashboardStats(),
	)
	b.addScoped(id, querykeys.PropertyDetail)
	b.addScoped(id, querykeys.PropertyUnits)
	b.addScoped(id, querykeys.PropertyActivity)
}

func unitFanout(b *batch, id string, parents entity.ParentIDs) {
	b.add(
		querykeys.UnitListAll(),
		querykeys.DashboardStats(),
	)
	// Unit counts surface on the owning property's detail and unit views.
	b.addScoped(parents.PropertyID, querykeys.UnitsByProperty)
	b.addScoped(parents.PropertyID, querykeys.PropertyDetail)
	b.addScoped(parents.PropertyID, querykeys.PropertyUnits)
	b.addScoped(id, querykeys.UnitDetail)
	b.addScoped(id, querykeys.UnitTenants)
	b.addScoped(id, querykeys.UnitJobs)
	b.addScoped(id, querykeys.UnitInspections)
}

func jobFanout(b *batch, id string, parents entity.ParentIDs) {
	b.add(
		querykeys.JobList(),
		querykeys.JobsByRole(),
		querykeys.DashboardStats(),
		querykeys.DashboardActivity(),
	)
	b.addScoped(id, querykeys.JobDetail)
	b.addScoped(id, querykeys.JobComments)
	b.addScoped(id, querykeys.JobPhotos)
	b.addScoped(id, querykeys.JobAudit)
	b.addScoped(parents.UnitID, querykeys.UnitJobs)
}

func serviceRequestFanout(b *batch, id string, parents entity.ParentIDs) {
	b.add(
		querykeys.ServiceRequestList(),
		querykeys.ServiceRequestsByRole(),
		querykeys.DashboardStats(),
		querykeys.DashboardActivity(),
	)
	b.addScoped(id, querykeys.ServiceRequestDetail)
	b.addScoped(id, querykeys.ServiceRequestComments)
	b.addScoped(id, querykeys.ServiceRequestPhotos)
	b.addScoped(id, querykeys.ServiceRequestAudit)
	b.addScoped(parents.UnitID, querykeys.UnitServiceRequests)
}

func inspectionFanout(b *batch, id string, parents entity.ParentIDs) {
	b.add(
		querykeys.InspectionList(),
		querykeys.InspectionsByRole(),
		querykeys.DashboardStats(),
		querykeys.DashboardActivity(),
	)
	b.addScoped(id, querykeys.InspectionDetail)
	b.addScoped(id, querykeys.InspectionRooms)
	b.addScoped(id, querykeys.InspectionIssues)
	b.addScoped(id, querykeys.InspectionPhotos)
	b.addScoped(id, querykeys.InspectionAudit)
	b.addScoped(parents.UnitID, querykeys.UnitInspections)
}

// tenantFanout invalidates dashboard stats like every other occupancy
// change. The dashboard shows occupancy counts, so tenant moves must not be
// the one kind that leaves them stale.
func tenantFanout(b *batch, _ string, parents entity.ParentIDs) {
	b.add(
		querykeys.TenantList(),
		querykeys.DashboardStats(),
	)
	b.addScoped(parents.UnitID, querykeys.TenantsByUnit)
	b.addScoped(parents.UnitID, querykeys.UnitTenants)
	b.addScoped(parents.UnitID, querykeys.UnitDetail)
}

func notificationFanout(b *batch, _ string, _ entity.ParentIDs) {
	b.add(
		querykeys.NotificationList(),
		querykeys.NotificationUnreadCount(),
	)
}

func dashboardFanout(b *batch, _ string, _ entity.ParentIDs) {
	b.add(
		querykeys.DashboardStats(),
		querykeys.DashboardActivity(),
	)
}

func userFanout(b *batch, id string, _ entity.ParentIDs) {
	b.add(
		querykeys.UserList(),
		querykeys.TechnicianList(),
	)
	b.addScoped(id, querykeys.UserDetail)
	b.addScoped(id, querykeys.AuthProfile)
}
