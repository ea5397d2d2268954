package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/repository"
	apperrors "github.com/dpp-hub/portal-core/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated staff member.
type Principal struct {
	TenantID string
	Staff    *domain.StaffMember
}

// TenantFunc reports the tenant bound to the request host, if any.
type TenantFunc func(c *fiber.Ctx) (string, bool)

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	staff      repository.StaffRepository
	hostTenant TenantFunc
}

// NewAuthMiddleware constructs middleware. hostTenant may be nil.
func NewAuthMiddleware(tokens *TokenManager, staff repository.StaffRepository, hostTenant TenantFunc) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, staff: staff, hostTenant: hostTenant}
}

// Handle enforces authentication for protected routes. On a tenant custom
// domain the token must belong to that tenant.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.hostTenant != nil {
		if tenantID, ok := m.hostTenant(c); ok && tenantID != claims.TenantID {
			return apperrors.NewForbidden("token not valid for this domain")
		}
	}

	staff, err := m.staff.GetByID(c.UserContext(), claims.TenantID, claims.StaffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("staff not found")
		}
		return apperrors.MapError(err)
	}
	if !staff.Active {
		return apperrors.NewUnauthorized("staff inactive")
	}

	c.Locals(principalKey, &Principal{TenantID: claims.TenantID, Staff: staff})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
