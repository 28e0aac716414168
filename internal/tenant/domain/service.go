package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	OwnerUserID snowflake.ID
	Name        string
}

type InviteMemberRequest struct {
	TenantID snowflake.ID
	UserID   snowflake.ID
	Role     Role
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Tenant, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	InviteMember(ctx context.Context, req InviteMemberRequest) (*Membership, error)
	DeactivateMember(ctx context.Context, tenantID, userID snowflake.ID) error
	ListMembers(ctx context.Context, tenantID snowflake.ID) ([]Membership, error)
}
