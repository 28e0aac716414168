package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/praxislabs/praxis/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func NewRepository() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, owner_user_id, name, slug, subscription_tier, subscription_status, trial_ends_at, max_patients, storage_gb, stripe_customer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.OwnerUserID,
		tenant.Name,
		tenant.Slug,
		tenant.SubscriptionTier,
		tenant.SubscriptionStatus,
		tenant.TrialEndsAt,
		tenant.MaxPatients,
		tenant.StorageGB,
		tenant.StripeCustomerID,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_user_id, name, slug, subscription_tier, subscription_status, trial_ends_at, max_patients, storage_gb, stripe_customer_id, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindByStripeCustomerID(ctx context.Context, db *gorm.DB, customerID string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_user_id, name, slug, subscription_tier, subscription_status, trial_ends_at, max_patients, storage_gb, stripe_customer_id, created_at, updated_at
		 FROM tenants WHERE stripe_customer_id = ? LIMIT 1`,
		customerID,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) SetStripeCustomerID(ctx context.Context, db *gorm.DB, id snowflake.ID, customerID string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants SET stripe_customer_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		customerID,
		id,
	).Error
}

func (r *repo) UpdateSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, update domain.SubscriptionUpdate) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET subscription_status = ?, subscription_tier = ?, trial_ends_at = ?, max_patients = ?, storage_gb = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		update.Status,
		update.Tier,
		update.TrialEndsAt,
		update.MaxPatients,
		update.StorageGB,
		id,
	).Error
}

func (r *repo) SetSubscriptionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.SubscriptionStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants SET subscription_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		id,
	).Error
}

func (r *repo) InsertMembership(ctx context.Context, db *gorm.DB, membership *domain.Membership) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO memberships (id, user_id, tenant_id, role, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		membership.ID,
		membership.UserID,
		membership.TenantID,
		membership.Role,
		membership.IsActive,
		membership.CreatedAt,
		membership.UpdatedAt,
	).Error
}

func (r *repo) FindMembership(ctx context.Context, db *gorm.DB, userID, tenantID snowflake.ID) (*domain.Membership, error) {
	var m domain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, tenant_id, role, is_active, created_at, updated_at
		 FROM memberships WHERE user_id = ? AND tenant_id = ? LIMIT 1`,
		userID,
		tenantID,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) ListActiveMembershipsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Membership, error) {
	var items []domain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, tenant_id, role, is_active, created_at, updated_at
		 FROM memberships WHERE user_id = ? AND is_active = true ORDER BY created_at ASC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListMembershipsByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Membership, error) {
	var items []domain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, tenant_id, role, is_active, created_at, updated_at
		 FROM memberships WHERE tenant_id = ? ORDER BY created_at ASC`,
		tenantID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeactivateMembership(ctx context.Context, db *gorm.DB, userID, tenantID snowflake.ID) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE memberships SET is_active = false, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND tenant_id = ?`,
		userID,
		tenantID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}
