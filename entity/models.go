package entity

import "time"

// Image is one photo attached to a property or unit. Primary images render
// first; DisplayOrder breaks ties among non-primary images.
type Image struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Primary      bool      `json:"primary"`
	DisplayOrder int       `json:"displayOrder"`
	UploadedAt   time.Time `json:"uploadedAt,omitempty"`
}

// UnitCounts aggregates a property's unit occupancy, as reported by the
// backend alongside the property record.
type UnitCounts struct {
	Total    int `json:"total"`
	Occupied int `json:"occupied"`
	Vacant   int `json:"vacant"`
}

// Property is a managed building or house.
type Property struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	AddressLine1 string     `json:"addressLine1"`
	AddressLine2 string     `json:"addressLine2,omitempty"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	PostalCode   string     `json:"postalCode"`
	Status       string     `json:"status"`
	UnitCounts   UnitCounts `json:"unitCounts"`
	Images       []Image    `json:"images,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Unit is a rentable space within a property.
type Unit struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	Label      string    `json:"label"`
	Status     string    `json:"status"`
	Bedrooms   int       `json:"bedrooms"`
	Bathrooms  float64   `json:"bathrooms"`
	RentCents  int64     `json:"rentCents"`
	Images     []Image   `json:"images,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Job is a maintenance work order, usually raised from a service request.
type Job struct {
	ID           string    `json:"id"`
	UnitID       string    `json:"unitId"`
	PropertyID   string    `json:"propertyId"`
	TechnicianID string    `json:"technicianId,omitempty"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ServiceRequest is a tenant-raised issue awaiting triage.
type ServiceRequest struct {
	ID         string    `json:"id"`
	UnitID     string    `json:"unitId"`
	PropertyID string    `json:"propertyId"`
	TenantID   string    `json:"tenantId,omitempty"`
	Summary    string    `json:"summary"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Inspection is a scheduled walkthrough of a unit.
type Inspection struct {
	ID          string    `json:"id"`
	UnitID      string    `json:"unitId"`
	PropertyID  string    `json:"propertyId"`
	InspectorID string    `json:"inspectorId,omitempty"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduledAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tenant is a person on a lease for a unit.
type Tenant struct {
	ID        string    `json:"id"`
	UnitID    string    `json:"unitId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notification is one entry in the in-app notification feed.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an account in the workspace: owner, manager, technician or
// tenant login.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updatedAt"`
}
