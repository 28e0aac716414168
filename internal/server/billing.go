package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/praxislabs/praxis/internal/tenantcontext"
)

type createCheckoutSessionRequest struct {
	PriceID    string `json:"price_id" binding:"required"`
	SuccessURL string `json:"success_url" binding:"required"`
	CancelURL  string `json:"cancel_url" binding:"required"`
}

// CreateCheckoutSession
// POST /api/billing/checkout-sessions
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFrom(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, err := s.sessionSvc.CreateCheckoutSession(c.Request.Context(), tenantID, req.PriceID, req.SuccessURL, req.CancelURL)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

type createPortalSessionRequest struct {
	ReturnURL string `json:"return_url" binding:"required"`
}

// CreatePortalSession
// POST /api/billing/portal-sessions
func (s *Server) CreatePortalSession(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFrom(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createPortalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, err := s.sessionSvc.CreatePortalSession(c.Request.Context(), tenantID, req.ReturnURL)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}
