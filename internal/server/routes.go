package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	accessguard "github.com/praxislabs/praxis/internal/access"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// route pairs a handler with its declared access requirement. Registration
// reads the table; there is no reflection and no implicit default, so a route
// missing its requirement does not compile.
type route struct {
	method  string
	path    string
	access  accessguard.Requirement
	handler gin.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodGet, "/api/me", accessguard.TenantOptional(), s.GetMe},
		{http.MethodPost, "/api/tenants", accessguard.TenantOptional(), s.CreateTenant},
		{http.MethodGet, "/api/tenant", accessguard.RequireTenant(), s.GetTenant},
		{http.MethodGet, "/api/tenant/members", accessguard.RequireTenant(), s.ListMembers},
		{http.MethodPost, "/api/tenant/members", accessguard.RequireTenant(), s.InviteMember},
		{http.MethodDelete, "/api/tenant/members/:user_id", accessguard.RequireTenant(), s.DeactivateMember},
		{http.MethodPost, "/api/billing/checkout-sessions", accessguard.RequireTenant(), s.CreateCheckoutSession},
		{http.MethodPost, "/api/billing/portal-sessions", accessguard.RequireTenant(), s.CreatePortalSession},
	}
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	// Unauthenticated surface. The webhook authenticates by signature, not
	// by principal.
	engine.GET("/healthz", s.GetHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.POST("/webhooks/stripe", s.PostStripeWebhook)

	api := engine.Group("/", s.Authenticate())
	for _, r := range s.routes() {
		api.Handle(r.method, r.path, s.Guard(r.access), r.handler)
	}
}

func (s *Server) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
		return
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
