package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SubscriptionUpdate is the full set of tenant fields a billing event may
// touch. Applied as one atomic row update so concurrent webhook deliveries
// never interleave partial writes.
type SubscriptionUpdate struct {
	Status      SubscriptionStatus
	Tier        SubscriptionTier
	TrialEndsAt *time.Time
	MaxPatients int
	StorageGB   int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindByStripeCustomerID(ctx context.Context, db *gorm.DB, customerID string) (*Tenant, error)
	SetStripeCustomerID(ctx context.Context, db *gorm.DB, id snowflake.ID, customerID string) error
	UpdateSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, update SubscriptionUpdate) error
	SetSubscriptionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status SubscriptionStatus) error

	InsertMembership(ctx context.Context, db *gorm.DB, membership *Membership) error
	FindMembership(ctx context.Context, db *gorm.DB, userID, tenantID snowflake.ID) (*Membership, error)
	ListActiveMembershipsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Membership, error)
	ListMembershipsByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Membership, error)
	DeactivateMembership(ctx context.Context, db *gorm.DB, userID, tenantID snowflake.ID) error
}
