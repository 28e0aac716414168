package server

import (
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	accessguard "github.com/praxislabs/praxis/internal/access"
	authdomain "github.com/praxislabs/praxis/internal/auth/domain"
	"github.com/praxislabs/praxis/internal/tenantcontext"
	"go.uber.org/zap"
)

// HeaderTenant selects the tenant a request operates on. Absent, the
// principal's primary tenant is used.
const HeaderTenant = "X-Tenant-Id"

// Authenticate resolves the bearer token into a tenant context and stores it
// on the request context. Requests without credentials pass through with an
// empty context; the per-route guard decides whether that is acceptable. A
// credential that is present but invalid is always a hard 401.
func (s *Server) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Request = c.Request.WithContext(tenantcontext.With(c.Request.Context(), tenantcontext.Context{}))
			c.Next()
			return
		}

		principal, err := s.authResolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, authdomain.ErrUnauthenticated) {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			s.log.Error("principal resolution failed", zap.Error(err))
			AbortWithError(c, err)
			return
		}

		tc := tenantcontext.Context{
			UserID:          principal.UserID,
			Role:            principal.Role,
			PrimaryTenantID: principal.PrimaryTenantID,
			Memberships:     principal.Memberships,
		}

		if raw := strings.TrimSpace(c.GetHeader(HeaderTenant)); raw != "" {
			tenantID, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, invalidRequestError())
				return
			}
			tc.TenantID = tenantID
		} else {
			tc.TenantID = principal.PrimaryTenantID
		}

		c.Request = c.Request.WithContext(tenantcontext.With(c.Request.Context(), tc))
		c.Next()
	}
}

// Guard enforces the route's declared access requirement.
func (s *Server) Guard(req accessguard.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, _ := tenantcontext.From(c.Request.Context())
		if err := accessguard.Decide(tc, req); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}
