package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
)

type User struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	Email           string            `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Name            string            `json:"name" gorm:"type:text;not null"`
	Role            tenantdomain.Role `json:"role" gorm:"type:text;not null"`
	PrimaryTenantID snowflake.ID      `json:"primary_tenant_id" gorm:"not null;index"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"not null"`
}

func (User) TableName() string { return "users" }

// Session links an opaque bearer token (stored hashed) to a user.
type Session struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;index"`
	TokenHash string       `json:"-" gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt time.Time    `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Session) TableName() string { return "sessions" }

// Principal is the authenticated identity for one request. It is derived
// fresh from storage per request and never persisted.
type Principal struct {
	UserID          snowflake.ID
	Role            tenantdomain.Role
	PrimaryTenantID snowflake.ID
	Memberships     []tenantdomain.Membership
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == tenantdomain.RoleSuperAdmin
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserNotFound    = errors.New("user_not_found")
)

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
