package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
	"github.com/praxislabs/praxis/internal/tenantcontext"
)

type createTenantRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTenant
// POST /api/tenants
//
// Tenant-optional on purpose: the caller may not belong to any tenant yet.
func (s *Server) CreateTenant(c *gin.Context) {
	tc, _ := tenantcontext.From(c.Request.Context())
	if !tc.Authenticated() {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant, err := s.tenantSvc.Create(c.Request.Context(), tenantdomain.CreateRequest{
		OwnerUserID: tc.UserID,
		Name:        req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": tenant})
}

// GetTenant
// GET /api/tenant
func (s *Server) GetTenant(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFrom(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	tenant, err := s.tenantSvc.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, tenant)
}

// ListMembers
// GET /api/tenant/members
func (s *Server) ListMembers(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFrom(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	members, err := s.tenantSvc.ListMembers(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, members)
}

type inviteMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// InviteMember
// POST /api/tenant/members
func (s *Server) InviteMember(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFrom(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role, err := tenantdomain.ParseRole(req.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	membership, err := s.tenantSvc.InviteMember(c.Request.Context(), tenantdomain.InviteMemberRequest{
		TenantID: tenantID,
		UserID:   userID,
		Role:     role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": membership})
}

// DeactivateMember
// DELETE /api/tenant/members/:user_id
func (s *Server) DeactivateMember(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFrom(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	userID, err := snowflake.ParseString(c.Param("user_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.tenantSvc.DeactivateMember(c.Request.Context(), tenantID, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMe
// GET /api/me
func (s *Server) GetMe(c *gin.Context) {
	tc, _ := tenantcontext.From(c.Request.Context())
	if !tc.Authenticated() {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	respondData(c, gin.H{
		"user_id":           tc.UserID.String(),
		"role":              tc.Role,
		"tenant_id":         idOrNil(tc.TenantID),
		"primary_tenant_id": idOrNil(tc.PrimaryTenantID),
		"memberships":       tc.Memberships,
	})
}

func idOrNil(id snowflake.ID) any {
	if id == 0 {
		return nil
	}
	return id.String()
}
