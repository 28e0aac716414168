// Package tenantcontext carries the per-request tenant/user/role resolution.
// The context value is created at the start of request handling and discarded
// with the request; it is never shared or stored.
package tenantcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
)

// Context is the resolved tenant scope of one request. The zero value means
// an unauthenticated request; absence is represented, not raised, because
// some routes are intentionally public.
type Context struct {
	TenantID        snowflake.ID
	UserID          snowflake.ID
	Role            tenantdomain.Role
	PrimaryTenantID snowflake.ID
	Memberships     []tenantdomain.Membership
}

func (c Context) Authenticated() bool { return c.UserID != 0 }

func (c Context) IsSuperAdmin() bool { return c.Role == tenantdomain.RoleSuperAdmin }

type contextKey struct{}

func With(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

func From(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}

// TenantIDFrom is the shorthand services use to scope queries.
func TenantIDFrom(ctx context.Context) (snowflake.ID, bool) {
	tc, ok := From(ctx)
	if !ok || tc.TenantID == 0 {
		return 0, false
	}
	return tc.TenantID, true
}
