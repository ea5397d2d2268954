package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dpp-hub/portal-core/internal/domain"
)

// TenantDomainRepository looks up tenants by their custom domains.
type TenantDomainRepository interface {
	ResolveTenantByDomain(ctx context.Context, hostname string) (*domain.DomainResolution, error)
	GetTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
}

type tenantDomainRepository struct {
	pool *pgxpool.Pool
}

// NewTenantDomainRepository builds the repository.
func NewTenantDomainRepository(pool *pgxpool.Pool) TenantDomainRepository {
	return &tenantDomainRepository{pool: pool}
}

// ResolveTenantByDomain returns nil, nil when no enabled tenant owns a
// verified domain with that hostname.
func (r *tenantDomainRepository) ResolveTenantByDomain(ctx context.Context, hostname string) (*domain.DomainResolution, error) {
	const query = `
        SELECT t.id, t.slug, d.portal_type
        FROM tenant_domains d
        JOIN tenants t ON t.id = d.tenant_id
        WHERE LOWER(d.hostname)=LOWER($1)
          AND d.verified_at IS NOT NULL
          AND t.enabled = TRUE
        ORDER BY d.is_primary DESC
        LIMIT 1`

	var res domain.DomainResolution
	err := r.pool.QueryRow(ctx, query, hostname).Scan(&res.TenantID, &res.TenantSlug, &res.PortalType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve tenant domain: %w", err)
	}
	if !res.PortalType.Recognized() {
		return nil, nil
	}
	return &res, nil
}

func (r *tenantDomainRepository) GetTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	const query = `
        SELECT id, name, slug, enabled, created_at, updated_at
        FROM tenants WHERE slug=$1`
	var tenant domain.Tenant
	if err := r.pool.QueryRow(ctx, query, slug).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.Enabled,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tenant, nil
}
