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

type CustomerServiceParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Provider   domain.Provider
	TenantRepo tenantdomain.Repository
}

// CustomerService owns the tenant → billing-customer link. At most one live
// provider customer is associated with a tenant; a stale or deleted reference
// self-heals on the next use instead of failing permanently.
type CustomerService struct {
	db         *gorm.DB
	log        *zap.Logger
	provider   domain.Provider
	tenantRepo tenantdomain.Repository
}

func NewCustomerService(p CustomerServiceParams) domain.CustomerService {
	return &CustomerService{
		db:         p.DB,
		log:        p.Log.Named("billing.customer"),
		provider:   p.Provider,
		tenantRepo: p.TenantRepo,
	}
}

func (s *CustomerService) GetOrCreateCustomer(ctx context.Context, tenantID snowflake.ID) (*domain.Customer, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrTenantNotFound
	}

	if tenant.StripeCustomerID != nil {
		customer, err := s.provider.GetCustomer(ctx, *tenant.StripeCustomerID)
		if err == nil && !customer.Deleted {
			return customer, nil
		}
		// Fetch failure and provider-side deletion both mean the stored link
		// is dead; fall through and mint a fresh customer.
		if err != nil {
			s.log.Warn("stored billing customer unreachable, recreating",
				zap.String("tenant_id", tenantID.String()),
				zap.String("customer_id", *tenant.StripeCustomerID),
				zap.Error(err))
		} else {
			s.log.Warn("stored billing customer deleted upstream, recreating",
				zap.String("tenant_id", tenantID.String()),
				zap.String("customer_id", *tenant.StripeCustomerID))
		}
	}

	ownerEmail, err := s.ownerEmail(ctx, tenant.OwnerUserID)
	if err != nil {
		return nil, err
	}

	customer, err := s.provider.CreateCustomer(ctx, domain.CreateCustomerInput{
		Email: ownerEmail,
		Name:  tenant.Name,
		Metadata: map[string]string{
			"tenant_id":     tenant.ID.String(),
			"owner_user_id": tenant.OwnerUserID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.SetStripeCustomerID(ctx, s.db, tenant.ID, customer.ID); err != nil {
		return nil, err
	}

	s.log.Info("billing customer created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("customer_id", customer.ID))
	return customer, nil
}

func (s *CustomerService) ownerEmail(ctx context.Context, ownerUserID snowflake.ID) (string, error) {
	var row struct {
		Email string `gorm:"column:email"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT email FROM users WHERE id = ? LIMIT 1`,
		ownerUserID,
	).Scan(&row).Error; err != nil {
		return "", err
	}
	return row.Email, nil
}
