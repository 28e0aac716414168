package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/praxislabs/praxis/internal/auth/domain"
	"github.com/praxislabs/praxis/internal/clock"
	"github.com/praxislabs/praxis/internal/tenant/domain"
	"github.com/praxislabs/praxis/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newTestTenantService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Tenant{}, &domain.Membership{}, &authdomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.Fixed(testNow),
		GenID: node,
		Repo:  repository.NewRepository(),
	})
	return svc, db
}

func seedOwner(t *testing.T, db *gorm.DB) snowflake.ID {
	t.Helper()
	owner := &authdomain.User{
		ID:        2001,
		Email:     "dana@north-clinic.example",
		Name:      "Dana",
		Role:      domain.RoleOwner,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, db.Create(owner).Error)
	return owner.ID
}

func TestCreateTenantProvisionsTrialDefaults(t *testing.T) {
	svc, db := newTestTenantService(t)
	ownerID := seedOwner(t, db)

	tenant, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerUserID: ownerID,
		Name:        "North Clinic",
	})
	require.NoError(t, err)

	assert.Equal(t, "north-clinic", tenant.Slug)
	assert.Equal(t, domain.TierStarter, tenant.SubscriptionTier)
	assert.Equal(t, domain.SubscriptionStatusTrial, tenant.SubscriptionStatus)
	assert.Equal(t, 100, tenant.MaxPatients)
	assert.Equal(t, 1, tenant.StorageGB)
	require.NotNil(t, tenant.TrialEndsAt)
	assert.Equal(t, testNow.AddDate(0, 0, 14), *tenant.TrialEndsAt)

	var membership domain.Membership
	require.NoError(t, db.First(&membership, "tenant_id = ? AND user_id = ?", tenant.ID, ownerID).Error)
	assert.Equal(t, domain.RoleOwner, membership.Role)
	assert.True(t, membership.IsActive)

	var owner authdomain.User
	require.NoError(t, db.First(&owner, "id = ?", ownerID).Error)
	assert.Equal(t, tenant.ID, owner.PrimaryTenantID)
}

func TestCreateTenantKeepsExistingPrimaryTenant(t *testing.T) {
	svc, db := newTestTenantService(t)
	ownerID := seedOwner(t, db)
	require.NoError(t, db.Model(&authdomain.User{}).Where("id = ?", ownerID).
		Update("primary_tenant_id", 777).Error)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerUserID: ownerID,
		Name:        "Second Clinic",
	})
	require.NoError(t, err)

	var owner authdomain.User
	require.NoError(t, db.First(&owner, "id = ?", ownerID).Error)
	assert.EqualValues(t, 777, owner.PrimaryTenantID)
}

func TestCreateTenantRejectsBlankName(t *testing.T) {
	svc, _ := newTestTenantService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerUserID: 2001,
		Name:        "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetByIDUnknownTenant(t *testing.T) {
	svc, _ := newTestTenantService(t)

	_, err := svc.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestInviteMember(t *testing.T) {
	svc, db := newTestTenantService(t)
	ownerID := seedOwner(t, db)
	tenant, err := svc.Create(context.Background(), domain.CreateRequest{OwnerUserID: ownerID, Name: "North Clinic"})
	require.NoError(t, err)

	membership, err := svc.InviteMember(context.Background(), domain.InviteMemberRequest{
		TenantID: tenant.ID,
		UserID:   5001,
		Role:     domain.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, membership.Role)
	assert.True(t, membership.IsActive)

	_, err = svc.InviteMember(context.Background(), domain.InviteMemberRequest{
		TenantID: tenant.ID,
		UserID:   5001,
		Role:     domain.RoleStaff,
	})
	assert.ErrorIs(t, err, domain.ErrMembershipExists)
}

func TestInviteMemberRejectsUnassignableRole(t *testing.T) {
	svc, _ := newTestTenantService(t)

	for _, role := range []string{"SUPER_ADMIN", "JANITOR", ""} {
		_, err := svc.InviteMember(context.Background(), domain.InviteMemberRequest{
			TenantID: 1001,
			UserID:   5001,
			Role:     domain.Role(role),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRole, "role %q", role)
	}
}

func TestDeactivateAndReinviteMember(t *testing.T) {
	svc, db := newTestTenantService(t)
	ownerID := seedOwner(t, db)
	tenant, err := svc.Create(context.Background(), domain.CreateRequest{OwnerUserID: ownerID, Name: "North Clinic"})
	require.NoError(t, err)

	_, err = svc.InviteMember(context.Background(), domain.InviteMemberRequest{
		TenantID: tenant.ID, UserID: 5001, Role: domain.RoleStaff,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateMember(context.Background(), tenant.ID, 5001))

	var stored domain.Membership
	require.NoError(t, db.First(&stored, "tenant_id = ? AND user_id = ?", tenant.ID, 5001).Error)
	assert.False(t, stored.IsActive)

	// Re-inviting reactivates the original row with the new role.
	membership, err := svc.InviteMember(context.Background(), domain.InviteMemberRequest{
		TenantID: tenant.ID, UserID: 5001, Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, membership.ID)
	assert.Equal(t, domain.RoleAdmin, membership.Role)
	assert.True(t, membership.IsActive)
}

func TestDeactivateMemberNotFound(t *testing.T) {
	svc, _ := newTestTenantService(t)

	err := svc.DeactivateMember(context.Background(), 1001, 9999)
	assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
}

func TestListMembers(t *testing.T) {
	svc, db := newTestTenantService(t)
	ownerID := seedOwner(t, db)
	tenant, err := svc.Create(context.Background(), domain.CreateRequest{OwnerUserID: ownerID, Name: "North Clinic"})
	require.NoError(t, err)

	_, err = svc.InviteMember(context.Background(), domain.InviteMemberRequest{
		TenantID: tenant.ID, UserID: 5001, Role: domain.RoleStaff,
	})
	require.NoError(t, err)

	members, err := svc.ListMembers(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}
