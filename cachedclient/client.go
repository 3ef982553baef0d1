package cachedclient

import (
	"context"
	"fmt"

	"github.com/propkit/client-go/apiclient"
	"github.com/propkit/client-go/cache"
	"github.com/propkit/client-go/entity"
	"github.com/propkit/client-go/mutation"
	"github.com/propkit/client-go/pagelist"
	"github.com/propkit/client-go/querykeys"
)

// Backend is the slice of the REST client the decorator wraps.
// *apiclient.Client satisfies it; tests substitute fakes.
type Backend interface {
	GetProperty(ctx context.Context, id string) (entity.Property, error)
	GetUnit(ctx context.Context, id string) (entity.Unit, error)
	GetDashboardStats(ctx context.Context) (map[string]int, error)

	PropertyPages(filter map[string]string) pagelist.FetchFunc[entity.Property]
	UnitPages(filter map[string]string) pagelist.FetchFunc[entity.Unit]
	PropertyUnitPages(propertyID string) pagelist.FetchFunc[entity.Unit]

	CreateProperty(ctx context.Context, in apiclient.CreatePropertyInput) (entity.Property, error)
	UpdateProperty(ctx context.Context, in apiclient.UpdatePropertyInput) (entity.Property, error)
	DeleteProperty(ctx context.Context, id string) error
	CreateUnit(ctx context.Context, in apiclient.CreateUnitInput) (entity.Unit, error)
	UpdateUnit(ctx context.Context, in apiclient.UpdateUnitInput) (entity.Unit, error)
	DeleteUnit(ctx context.Context, id string) error
}

var _ Backend = (*apiclient.Client)(nil)

// Client decorates a Backend with the query cache on reads and the
// invalidation fan-out on writes. Reads land on shared cache entries keyed
// by the querykeys builders, so a mutation anywhere in the process refreshes
// every decorated read path.
type Client struct {
	base   Backend
	cache  cache.QueryCache
	runner *mutation.Runner
}

// New creates a cache-decorated client over the base backend. Filter
// descriptors are serialized into key segments by the querykeys registry, so
// equal filters land on the same entries regardless of construction order.
func New(base Backend, qc cache.QueryCache, runner *mutation.Runner) *Client {
	return &Client{base: base, cache: qc, runner: runner}
}

// GetProperty retrieves a property, cached under its detail key.
func (c *Client) GetProperty(ctx context.Context, id string) (entity.Property, error) {
	return cache.GetOrFetch(ctx, c.cache, querykeys.PropertyDetail(id), func(ctx context.Context) (entity.Property, error) {
		return c.base.GetProperty(ctx, id)
	})
}

// GetUnit retrieves a unit, cached under its detail key.
func (c *Client) GetUnit(ctx context.Context, id string) (entity.Unit, error) {
	return cache.GetOrFetch(ctx, c.cache, querykeys.UnitDetail(id), func(ctx context.Context) (entity.Unit, error) {
		return c.base.GetUnit(ctx, id)
	})
}

// DashboardStats retrieves the dashboard counters, cached under the stats
// key every occupancy-affecting mutation invalidates.
func (c *Client) DashboardStats(ctx context.Context) (map[string]int, error) {
	return cache.GetOrFetch(ctx, c.cache, querykeys.DashboardStats(), func(ctx context.Context) (map[string]int, error) {
		return c.base.GetDashboardStats(ctx)
	})
}

// pageKey scopes a filtered list key down to one page.
func pageKey(listKey cache.Key, offset, limit int) cache.Key {
	return append(listKey, fmt.Sprintf("o%d-l%d", offset, limit))
}

// PropertyPages returns a page fetcher whose pages are cached under the
// filtered property list key. Property mutations invalidate the whole
// properties namespace, so every cached page refetches after a write.
func (c *Client) PropertyPages(filter map[string]string) pagelist.FetchFunc[entity.Property] {
	fetch := c.base.PropertyPages(filter)
	return cachedPages(c.cache, querykeys.PropertyListFiltered(filter), fetch)
}

// UnitPages returns a page fetcher whose pages are cached under the filtered
// unit list key.
func (c *Client) UnitPages(filter map[string]string) pagelist.FetchFunc[entity.Unit] {
	fetch := c.base.UnitPages(filter)
	return cachedPages(c.cache, querykeys.UnitListFiltered(filter), fetch)
}

// PropertyUnitPages returns a page fetcher for one property's units, cached
// under that property's units key.
func (c *Client) PropertyUnitPages(propertyID string) pagelist.FetchFunc[entity.Unit] {
	fetch := c.base.PropertyUnitPages(propertyID)
	return cachedPages(c.cache, querykeys.PropertyUnits(propertyID), fetch)
}

func cachedPages[T any](qc cache.QueryCache, listKey cache.Key, fetch pagelist.FetchFunc[T]) pagelist.FetchFunc[T] {
	return func(ctx context.Context, offset, limit int) (pagelist.Page[T], error) {
		return cache.GetOrFetch(ctx, qc, pageKey(listKey, offset, limit), func(ctx context.Context) (pagelist.Page[T], error) {
			return fetch(ctx, offset, limit)
		})
	}
}

// CreateProperty creates a property and fans out the property invalidations.
func (c *Client) CreateProperty(ctx context.Context, in apiclient.CreatePropertyInput) (entity.Property, error) {
	return mutation.Run(ctx, c.runner, in, c.base.CreateProperty, propertyExtractors[apiclient.CreatePropertyInput]())
}

// UpdateProperty updates a property and fans out the property invalidations.
func (c *Client) UpdateProperty(ctx context.Context, in apiclient.UpdatePropertyInput) (entity.Property, error) {
	return mutation.Run(ctx, c.runner, in, c.base.UpdateProperty, propertyExtractors[apiclient.UpdatePropertyInput]())
}

// DeleteProperty deletes a property and fans out the property invalidations.
func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	_, err := mutation.Run(ctx, c.runner, id,
		func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, c.base.DeleteProperty(ctx, id)
		},
		mutation.Extractors[string, struct{}]{
			Kind:     entity.KindProperty,
			EntityID: func(id string, _ struct{}) string { return id },
		})
	return err
}

// CreateUnit creates a unit and fans out the unit invalidations, including
// the owning property's detail and unit views.
func (c *Client) CreateUnit(ctx context.Context, in apiclient.CreateUnitInput) (entity.Unit, error) {
	return mutation.Run(ctx, c.runner, in, c.base.CreateUnit, unitExtractors[apiclient.CreateUnitInput]())
}

// UpdateUnit updates a unit and fans out the unit invalidations.
func (c *Client) UpdateUnit(ctx context.Context, in apiclient.UpdateUnitInput) (entity.Unit, error) {
	return mutation.Run(ctx, c.runner, in, c.base.UpdateUnit, unitExtractors[apiclient.UpdateUnitInput]())
}

// DeleteUnit deletes a unit and fans out the unit invalidations. The unit is
// fetched first so the fan-out can reach the owning property's keys.
func (c *Client) DeleteUnit(ctx context.Context, id string) error {
	unit, err := c.GetUnit(ctx, id)
	if err != nil {
		return err
	}

	_, err = mutation.Run(ctx, c.runner, id,
		func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, c.base.DeleteUnit(ctx, id)
		},
		mutation.Extractors[string, struct{}]{
			Kind:     entity.KindUnit,
			EntityID: func(id string, _ struct{}) string { return id },
			Parents: func(string, struct{}) entity.ParentIDs {
				return entity.ParentIDs{PropertyID: unit.PropertyID, UnitID: id}
			},
		})
	return err
}

// propertyExtractors derives the property directive from the response, which
// is authoritative for server-generated ids.
func propertyExtractors[In any]() mutation.Extractors[In, entity.Property] {
	return mutation.Extractors[In, entity.Property]{
		Kind:     entity.KindProperty,
		EntityID: func(_ In, out entity.Property) string { return out.ID },
	}
}

func unitExtractors[In any]() mutation.Extractors[In, entity.Unit] {
	return mutation.Extractors[In, entity.Unit]{
		Kind:     entity.KindUnit,
		EntityID: func(_ In, out entity.Unit) string { return out.ID },
		Parents: func(_ In, out entity.Unit) entity.ParentIDs {
			return entity.ParentIDs{PropertyID: out.PropertyID, UnitID: out.ID}
		},
	}
}
