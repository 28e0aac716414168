package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/praxislabs/praxis/internal/billing/domain"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SessionServiceParams struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Provider    domain.Provider
	CustomerSvc domain.CustomerService
	TenantRepo  tenantdomain.Repository
}

type SessionService struct {
	db          *gorm.DB
	log         *zap.Logger
	provider    domain.Provider
	customerSvc domain.CustomerService
	tenantRepo  tenantdomain.Repository
}

func NewSessionService(p SessionServiceParams) domain.SessionService {
	return &SessionService{
		db:          p.DB,
		log:         p.Log.Named("billing.session"),
		provider:    p.Provider,
		customerSvc: p.CustomerSvc,
		tenantRepo:  p.TenantRepo,
	}
}

func (s *SessionService) CreateCheckoutSession(ctx context.Context, tenantID snowflake.ID, priceID, successURL, cancelURL string) (*domain.CheckoutSession, error) {
	customer, err := s.customerSvc.GetOrCreateCustomer(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// tenant_id in the session metadata lets the webhook processor attribute
	// the resulting subscription without a customer-id lookup.
	session, err := s.provider.CreateCheckoutSession(ctx, domain.CheckoutSessionInput{
		CustomerID: customer.ID,
		PriceID:    priceID,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata: map[string]string{
			"tenant_id": tenantID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("session_id", session.ID))
	return session, nil
}

// CreatePortalSession requires an existing customer link. A portal session
// without a prior subscription intent is meaningless, so this never creates
// a customer implicitly.
func (s *SessionService) CreatePortalSession(ctx context.Context, tenantID snowflake.ID, returnURL string) (*domain.PortalSession, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrTenantNotFound
	}
	if tenant.StripeCustomerID == nil {
		return nil, domain.ErrNoBillingCustomer
	}

	return s.provider.CreatePortalSession(ctx, *tenant.StripeCustomerID, returnURL)
}
