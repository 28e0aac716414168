// Package server is the HTTP edge: route declarations, request
// authentication, tenant scoping, and translation of domain errors into
// responses. All business rules live below it.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	authservice "github.com/praxislabs/praxis/internal/auth/service"
	billingdomain "github.com/praxislabs/praxis/internal/billing/domain"
	"github.com/praxislabs/praxis/internal/billing/webhook"
	"github.com/praxislabs/praxis/internal/config"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Run),
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	Redis        *redis.Client
	AuthResolver *authservice.Resolver
	TenantSvc    tenantdomain.Service
	SessionSvc   billingdomain.SessionService
	WebhookProc  *webhook.Processor
}

type Server struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.Config
	redis        *redis.Client
	authResolver *authservice.Resolver
	tenantSvc    tenantdomain.Service
	sessionSvc   billingdomain.SessionService
	webhookProc  *webhook.Processor
}

func NewServer(p Params) *Server {
	return &Server{
		db:           p.DB,
		log:          p.Log.Named("server"),
		cfg:          p.Cfg,
		redis:        p.Redis,
		authResolver: p.AuthResolver,
		tenantSvc:    p.TenantSvc,
		sessionSvc:   p.SessionSvc,
		webhookProc:  p.WebhookProc,
	}
}

func Run(lc fx.Lifecycle, s *Server) {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(Metrics())
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
