package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/praxislabs/praxis/internal/auth/domain"
	"github.com/praxislabs/praxis/internal/clock"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
	"github.com/praxislabs/praxis/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newTestResolver(t *testing.T) (*Resolver, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}, &tenantdomain.Membership{}))

	resolver := NewResolver(ResolverParams{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      clock.Fixed(testNow),
		TenantRepo: repository.NewRepository(),
	})
	return resolver, db
}

func seedUserWithSession(t *testing.T, db *gorm.DB, token string, expiresAt time.Time) {
	t.Helper()

	require.NoError(t, db.Create(&domain.User{
		ID:              2001,
		Email:           "dana@north-clinic.example",
		Name:            "Dana",
		Role:            tenantdomain.RoleOwner,
		PrimaryTenantID: 1001,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}).Error)

	require.NoError(t, db.Create(&domain.Session{
		ID:        3001,
		UserID:    2001,
		TokenHash: domain.HashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: testNow,
	}).Error)
}

func TestResolveValidToken(t *testing.T) {
	resolver, db := newTestResolver(t)
	seedUserWithSession(t, db, "tok_valid", testNow.Add(time.Hour))

	require.NoError(t, db.Create(&tenantdomain.Membership{
		ID:        4001,
		UserID:    2001,
		TenantID:  1002,
		Role:      tenantdomain.RoleStaff,
		IsActive:  true,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}).Error)

	principal, err := resolver.Resolve(context.Background(), "tok_valid")
	require.NoError(t, err)
	assert.EqualValues(t, 2001, principal.UserID)
	assert.Equal(t, tenantdomain.RoleOwner, principal.Role)
	assert.EqualValues(t, 1001, principal.PrimaryTenantID)
	require.Len(t, principal.Memberships, 1)
	assert.EqualValues(t, 1002, principal.Memberships[0].TenantID)
}

func TestResolveOmitsInactiveMemberships(t *testing.T) {
	resolver, db := newTestResolver(t)
	seedUserWithSession(t, db, "tok_valid", testNow.Add(time.Hour))

	require.NoError(t, db.Create(&tenantdomain.Membership{
		ID:        4001,
		UserID:    2001,
		TenantID:  1002,
		Role:      tenantdomain.RoleStaff,
		IsActive:  false,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}).Error)

	principal, err := resolver.Resolve(context.Background(), "tok_valid")
	require.NoError(t, err)
	assert.Empty(t, principal.Memberships)
}

func TestResolveRejectsExpiredSession(t *testing.T) {
	resolver, db := newTestResolver(t)
	seedUserWithSession(t, db, "tok_expired", testNow.Add(-time.Minute))

	_, err := resolver.Resolve(context.Background(), "tok_expired")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolveRejectsUnknownToken(t *testing.T) {
	resolver, db := newTestResolver(t)
	seedUserWithSession(t, db, "tok_valid", testNow.Add(time.Hour))

	_, err := resolver.Resolve(context.Background(), "tok_other")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolveRejectsEmptyToken(t *testing.T) {
	resolver, _ := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
