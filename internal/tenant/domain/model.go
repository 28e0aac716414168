package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type SubscriptionTier string

const (
	TierStarter      SubscriptionTier = "STARTER"
	TierProfessional SubscriptionTier = "PROFESSIONAL"
	TierEnterprise   SubscriptionTier = "ENTERPRISE"
)

type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleAdmin      Role = "ADMIN"
	RoleStaff      Role = "STAFF"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Tenant is a clinic. Subscription fields (status, tier, trial) are owned by
// the subscription state machine; quotas by administrative operations. Rows
// are never deleted, only marked CANCELLED.
type Tenant struct {
	ID                 snowflake.ID       `json:"id" gorm:"primaryKey"`
	OwnerUserID        snowflake.ID       `json:"owner_user_id" gorm:"not null;index"`
	Name               string             `json:"name" gorm:"type:text;not null"`
	Slug               string             `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	SubscriptionTier   SubscriptionTier   `json:"subscription_tier" gorm:"type:text;not null"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status" gorm:"type:text;not null"`
	TrialEndsAt        *time.Time         `json:"trial_ends_at"`
	MaxPatients        int                `json:"max_patients" gorm:"not null"`
	StorageGB          int                `json:"storage_gb" gorm:"not null"`
	StripeCustomerID   *string            `json:"stripe_customer_id" gorm:"type:text;uniqueIndex"`
	CreatedAt          time.Time          `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time          `json:"updated_at" gorm:"not null"`
}

func (Tenant) TableName() string { return "tenants" }

// Membership grants a user access to a tenant. (UserID, TenantID) is unique;
// removal deactivates rather than deletes, preserving history.
type Membership struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;uniqueIndex:idx_memberships_user_tenant"`
	TenantID  snowflake.ID `json:"tenant_id" gorm:"not null;uniqueIndex:idx_memberships_user_tenant"`
	Role      Role         `json:"role" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Membership) TableName() string { return "memberships" }

var (
	ErrTenantNotFound     = errors.New("tenant_not_found")
	ErrMembershipExists   = errors.New("membership_exists")
	ErrMembershipNotFound = errors.New("membership_not_found")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidName        = errors.New("invalid_name")
)

func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleOwner, RoleAdmin, RoleStaff:
		return Role(value), nil
	default:
		return "", ErrInvalidRole
	}
}
