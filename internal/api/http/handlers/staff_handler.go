package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/dpp-hub/portal-core/internal/api/dto"
	"github.com/dpp-hub/portal-core/internal/api/http/gate"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/service"
	apperrors "github.com/dpp-hub/portal-core/pkg/util/errorutil"
)

// TenantFinder looks tenants up by slug.
type TenantFinder interface {
	GetTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
}

// StaffHandler exposes staff login and provisioning endpoints.
type StaffHandler struct {
	authService *service.AuthService
	tenants     TenantFinder
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService, tenants TenantFinder) *StaffHandler {
	return &StaffHandler{authService: authService, tenants: tenants}
}

// Login handles POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	tenantID, err := h.loginTenant(c, req.TenantSlug)
	if err != nil {
		return err
	}
	staff, token, exp, err := h.authService.LoginStaff(c.UserContext(), tenantID, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff": staffResponse(staff),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// CreateStaff handles POST /api/staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.authService.CreateStaff(c.UserContext(), admin.TenantID, service.StaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

// loginTenant picks the tenant from the custom domain, falling back to the
// slug in the request on platform hosts.
func (h *StaffHandler) loginTenant(c *fiber.Ctx, slug string) (string, error) {
	if tenantID, ok := gate.TenantID(c); ok {
		return tenantID, nil
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", apperrors.NewValidationError("tenant_slug required", nil)
	}
	tenant, err := h.tenants.GetTenantBySlug(c.UserContext(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewUnauthorized("invalid credentials")
		}
		return "", apperrors.MapError(err)
	}
	if !tenant.Enabled {
		return "", apperrors.NewUnauthorized("invalid credentials")
	}
	return tenant.ID, nil
}

func staffResponse(staff *domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:       staff.ID,
		TenantID: staff.TenantID,
		Name:     staff.Name,
		Email:    staff.Email,
		Role:     staff.Role,
		Active:   staff.Active,
	}
}
