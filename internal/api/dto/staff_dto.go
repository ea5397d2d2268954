package dto

import (
	"time"

	"github.com/dpp-hub/portal-core/internal/domain"
)

// StaffLoginRequest payload. TenantSlug is only read on platform hosts; on a
// tenant custom domain the tenant comes from the host.
type StaffLoginRequest struct {
	TenantSlug string `json:"tenant_slug"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// CreateStaffRequest payload for provisioning staff.
type CreateStaffRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.StaffRole `json:"role"`
}

// StaffResponse is the public view of a staff member.
type StaffResponse struct {
	ID       string           `json:"id"`
	TenantID string           `json:"tenant_id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Role     domain.StaffRole `json:"role"`
	Active   bool             `json:"active"`
}

// AuthResponse carries an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
