package apiclient

import (
	"context"
	"fmt"

	"github.com/propkit/client-go/entity"
	"github.com/propkit/client-go/pagelist"
)

// listEnvelope is the backend's list response shape.
type listEnvelope[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"hasMore"`
	Total   int  `json:"total"`
}

// listPage fetches one page of a listing endpoint.
func listPage[T any](ctx context.Context, c *Client, path string, offset, limit int, filter map[string]string) (pagelist.Page[T], error) {
	var envelope listEnvelope[T]
	if err := c.get(ctx, path, listParams(offset, limit, filter), &envelope); err != nil {
		return pagelist.Page[T]{}, err
	}
	return pagelist.Page[T]{
		Items:   envelope.Items,
		HasMore: envelope.HasMore,
		Offset:  offset,
	}, nil
}

// PropertyPages returns a page fetcher for the property list, bound to a
// filter. Plug it into pagelist.NewAccumulator or pagelist.NewView.
func (c *Client) PropertyPages(filter map[string]string) pagelist.FetchFunc[entity.Property] {
	return func(ctx context.Context, offset, limit int) (pagelist.Page[entity.Property], error) {
		return listPage[entity.Property](ctx, c, "/properties", offset, limit, filter)
	}
}

// UnitPages returns a page fetcher for the cross-property unit list.
func (c *Client) UnitPages(filter map[string]string) pagelist.FetchFunc[entity.Unit] {
	return func(ctx context.Context, offset, limit int) (pagelist.Page[entity.Unit], error) {
		return listPage[entity.Unit](ctx, c, "/units", offset, limit, filter)
	}
}

// PropertyUnitPages returns a page fetcher for one property's units.
func (c *Client) PropertyUnitPages(propertyID string) pagelist.FetchFunc[entity.Unit] {
	path := fmt.Sprintf("/properties/%s/units", propertyID)
	return func(ctx context.Context, offset, limit int) (pagelist.Page[entity.Unit], error) {
		return listPage[entity.Unit](ctx, c, path, offset, limit, nil)
	}
}

// JobPages returns a page fetcher for the job list.
func (c *Client) JobPages(filter map[string]string) pagelist.FetchFunc[entity.Job] {
	return func(ctx context.Context, offset, limit int) (pagelist.Page[entity.Job], error) {
		return listPage[entity.Job](ctx, c, "/jobs", offset, limit, filter)
	}
}

// ServiceRequestPages returns a page fetcher for the service request list.
func (c *Client) ServiceRequestPages(filter map[string]string) pagelist.FetchFunc[entity.ServiceRequest] {
	return func(ctx context.Context, offset, limit int) (pagelist.Page[entity.ServiceRequest], error) {
		return listPage[entity.ServiceRequest](ctx, c, "/service-requests", offset, limit, filter)
	}
}

// InspectionPages returns a page fetcher for the inspection list.
func (c *Client) InspectionPages(filter map[string]string) pagelist.FetchFunc[entity.Inspection] {
	return func(ctx context.Context, offset, limit int) (pagelist.Page[entity.Inspection], error) {
		return listPage[entity.Inspection](ctx, c, "/inspections", offset, limit, filter)
	}
}

// GetProperty fetches one property.
func (c *Client) GetProperty(ctx context.Context, id string) (entity.Property, error) {
	var out entity.Property
	err := c.get(ctx, "/properties/"+id, nil, &out)
	return out, err
}

// GetUnit fetches one unit.
func (c *Client) GetUnit(ctx context.Context, id string) (entity.Unit, error) {
	var out entity.Unit
	err := c.get(ctx, "/units/"+id, nil, &out)
	return out, err
}

// GetDashboardStats fetches the dashboard counters.
func (c *Client) GetDashboardStats(ctx context.Context) (map[string]int, error) {
	var out map[string]int
	err := c.get(ctx, "/dashboard/stats", nil, &out)
	return out, err
}

// CreatePropertyInput is the create payload.
type CreatePropertyInput struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
}

// CreateProperty creates a property. Shaped for mutation.Run: the returned
// record carries the server-generated id.
func (c *Client) CreateProperty(ctx context.Context, in CreatePropertyInput) (entity.Property, error) {
	var out entity.Property
	err := c.post(ctx, "/properties", in, &out)
	return out, err
}

// UpdatePropertyInput is the update payload.
type UpdatePropertyInput struct {
	ID     string `json:"-"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

// UpdateProperty updates a property.
func (c *Client) UpdateProperty(ctx context.Context, in UpdatePropertyInput) (entity.Property, error) {
	var out entity.Property
	err := c.put(ctx, "/properties/"+in.ID, in, &out)
	return out, err
}

// DeleteProperty deletes a property.
func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.delete(ctx, "/properties/"+id)
}

// CreateUnitInput is the create payload.
type CreateUnitInput struct {
	PropertyID string  `json:"propertyId"`
	Label      string  `json:"label"`
	Bedrooms   int     `json:"bedrooms"`
	Bathrooms  float64 `json:"bathrooms"`
	RentCents  int64   `json:"rentCents"`
}

// CreateUnit creates a unit under a property.
func (c *Client) CreateUnit(ctx context.Context, in CreateUnitInput) (entity.Unit, error) {
	var out entity.Unit
	err := c.post(ctx, "/units", in, &out)
	return out, err
}

// UpdateUnitInput is the update payload.
type UpdateUnitInput struct {
	ID        string `json:"-"`
	Label     string `json:"label,omitempty"`
	Status    string `json:"status,omitempty"`
	RentCents int64  `json:"rentCents,omitempty"`
}

// UpdateUnit updates a unit.
func (c *Client) UpdateUnit(ctx context.Context, in UpdateUnitInput) (entity.Unit, error) {
	var out entity.Unit
	err := c.put(ctx, "/units/"+in.ID, in, &out)
	return out, err
}

// DeleteUnit deletes a unit.
func (c *Client) DeleteUnit(ctx context.Context, id string) error {
	return c.delete(ctx, "/units/"+id)
}
