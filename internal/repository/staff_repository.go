package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dpp-hub/portal-core/internal/domain"
)

// StaffRepository handles persistence for tenant staff members.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*domain.StaffMember, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (tenant_id, name, email, password_hash, role, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.TenantID,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, tenant_id, name, email, password_hash, role, active_flag, created_at, updated_at
        FROM staff_members WHERE tenant_id=$1 AND id=$2`
	return r.fetchSingle(ctx, query, tenantID, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, tenantID, email string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, tenant_id, name, email, password_hash, role, active_flag, created_at, updated_at
        FROM staff_members WHERE tenant_id=$1 AND LOWER(email)=LOWER($2)`
	return r.fetchSingle(ctx, query, tenantID, email)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&staff.ID,
		&staff.TenantID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}
