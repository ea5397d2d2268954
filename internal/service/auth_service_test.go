package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/dpp-hub/portal-core/internal/config"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/service"
)

func TestLoginStaff(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}, repo)
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, "tenant-1", service.StaffInput{Name: "Dana", Email: " Dana@Acme.com ", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, "dana@acme.com", created.Email)
	require.Equal(t, domain.StaffRoleAgent, created.Role)

	_, err = svc.CreateStaff(ctx, "tenant-1", service.StaffInput{Name: "Dana", Email: "dana@acme.com", Password: "correct-horse"})
	requireCode(t, err, "CONFLICT")

	staff, token, _, err := svc.LoginStaff(ctx, "tenant-1", "DANA@acme.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, created.ID, staff.ID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Equal(t, created.ID, claims.StaffID)

	_, _, _, err = svc.LoginStaff(ctx, "tenant-1", "dana@acme.com", "wrong-password")
	requireCode(t, err, "UNAUTHORIZED")

	_, _, _, err = svc.LoginStaff(ctx, "tenant-2", "dana@acme.com", "correct-horse")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestLoginStaffInactive(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "secret", BcryptCost: 4}, repo)
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, "tenant-1", service.StaffInput{Name: "Sam", Email: "sam@acme.com", Password: "long-enough", Role: domain.StaffRoleAdmin})
	require.NoError(t, err)
	repo.deactivate(created.ID)

	_, _, _, err = svc.LoginStaff(ctx, "tenant-1", "sam@acme.com", "long-enough")
	requireCode(t, err, "FORBIDDEN")
}

func TestCreateStaffValidation(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "secret", BcryptCost: 4}, newFakeStaffRepo())

	_, err := svc.CreateStaff(context.Background(), "tenant-1", service.StaffInput{Name: "Sam", Email: "sam@acme.com", Password: "short"})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = svc.CreateStaff(context.Background(), "tenant-1", service.StaffInput{Name: "Sam", Email: "sam@acme.com", Password: "long-enough", Role: "owner"})
	requireCode(t, err, "VALIDATION_FAILED")
}

type fakeStaffRepo struct {
	mu    sync.Mutex
	staff map[string]*domain.StaffMember
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: map[string]*domain.StaffMember{}}
}

func (r *fakeStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff.ID = fmt.Sprintf("staff-%d", len(r.staff)+1)
	copied := *staff
	r.staff[staff.ID] = &copied
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, tenantID, id string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.staff[id]
	if !ok || staff.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *staff
	return &copied, nil
}

func (r *fakeStaffRepo) GetByEmail(_ context.Context, tenantID, email string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, staff := range r.staff {
		if staff.TenantID == tenantID && staff.Email == email {
			copied := *staff
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaffRepo) deactivate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[id].Active = false
}
