// Package access decides whether a request's tenant context may touch the
// tenant it targets. Decide is a pure function of the context and the route's
// declared requirement; it performs no storage access.
package access

import (
	"errors"

	"github.com/praxislabs/praxis/internal/tenantcontext"
)

var (
	// ErrUnauthenticated maps to 401: no principal at all.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTenantRequired maps to 403: a principal exists but no tenant could
	// be derived for a tenant-scoped route.
	ErrTenantRequired = errors.New("tenant_context_required")
	// ErrForbidden maps to 403: principal and tenant both present, but the
	// principal has no grant for that tenant.
	ErrForbidden = errors.New("access_forbidden")
)

// Requirement is the declarative per-route access requirement. Routes are
// tenant-scoped unless they opt out.
type Requirement struct {
	TenantRequired bool
}

func RequireTenant() Requirement  { return Requirement{TenantRequired: true} }
func TenantOptional() Requirement { return Requirement{TenantRequired: false} }

// Decide allows or denies the request. A membership grant requires an active
// membership for the target tenant; the primary-tenant fallback additionally
// admits principals created before memberships were tracked for their home
// tenant, so membership rows are deliberately not the sole source of truth.
func Decide(tc tenantcontext.Context, req Requirement) error {
	if !req.TenantRequired {
		return nil
	}
	if !tc.Authenticated() {
		return ErrUnauthenticated
	}
	if tc.IsSuperAdmin() {
		return nil
	}
	if tc.TenantID == 0 {
		return ErrTenantRequired
	}
	for _, m := range tc.Memberships {
		if m.TenantID == tc.TenantID && m.IsActive {
			return nil
		}
	}
	if tc.PrimaryTenantID != 0 && tc.PrimaryTenantID == tc.TenantID {
		return nil
	}
	return ErrForbidden
}
