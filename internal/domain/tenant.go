package domain

import (
	"strings"
	"time"
)

// PortalType names the portal a custom domain is configured to serve.
type PortalType string

const (
	PortalTypeCustomer PortalType = "customer_portal"
	PortalTypeSupplier PortalType = "supplier_portal"
	PortalTypeReturns  PortalType = "returns_portal"
)

// Recognized reports whether the portal type is one the platform can render.
func (p PortalType) Recognized() bool {
	switch p {
	case PortalTypeCustomer, PortalTypeSupplier, PortalTypeReturns:
		return true
	}
	return false
}

// Tenant is an organization owning its own data partition.
type Tenant struct {
	ID        string
	Name      string
	Slug      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantDomain maps a hostname to a tenant portal.
type TenantDomain struct {
	ID         string
	TenantID   string
	Hostname   string
	PortalType PortalType
	IsPrimary  bool
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

// DomainResolution is the outcome of a successful custom domain lookup.
// The JSON form is what gets stored in the session cache.
type DomainResolution struct {
	TenantID   string     `json:"tenantId"`
	TenantSlug string     `json:"tenantSlug"`
	PortalType PortalType `json:"portalType"`
}

// Valid reports whether the resolution carries enough to route a request.
func (r DomainResolution) Valid() bool {
	return r.TenantID != "" && r.TenantSlug != "" && r.PortalType.Recognized()
}

// PortalPath builds the tenant portal path, e.g. /portal/acme/customer.
func (r DomainResolution) PortalPath() string {
	kind := strings.TrimSuffix(string(r.PortalType), "_portal")
	return "/portal/" + r.TenantSlug + "/" + kind
}
