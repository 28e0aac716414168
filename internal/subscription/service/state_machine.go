// Package service owns the tenant subscription fields and the transition
// rules between subscription states. All transitions are driven by inbound
// billing events; there is no timer-based expiry here.
package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/praxislabs/praxis/internal/billing/domain"
	"github.com/praxislabs/praxis/internal/config"
	quotadomain "github.com/praxislabs/praxis/internal/quota/domain"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	TenantRepo tenantdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	tenantRepo tenantdomain.Repository
	priceTiers map[string]tenantdomain.SubscriptionTier
}

func NewService(p Params) billingdomain.Applier {
	priceTiers := make(map[string]tenantdomain.SubscriptionTier, len(p.Cfg.Stripe.PriceTierMap))
	for priceID, tier := range p.Cfg.Stripe.PriceTierMap {
		priceTiers[priceID] = tenantdomain.SubscriptionTier(strings.ToUpper(tier))
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("subscription"),
		tenantRepo: p.TenantRepo,
		priceTiers: priceTiers,
	}
}

// Apply drives one transition. Every variant derives the new tenant row
// purely from the event payload and writes it in a single atomic update, so
// reapplying the same event is a no-op in effect and concurrent deliveries
// cannot interleave partial writes.
func (s *Service) Apply(ctx context.Context, ev billingdomain.Event) error {
	switch ev := ev.(type) {
	case billingdomain.SubscriptionChanged:
		return s.applyChanged(ctx, ev)
	case billingdomain.SubscriptionDeleted:
		return s.applyDeleted(ctx, ev)
	case billingdomain.InvoicePaymentSucceeded:
		// Informational only; a notification layer may react, this core
		// does not change state.
		s.log.Info("invoice payment succeeded",
			zap.String("event_id", ev.ID),
			zap.String("invoice_id", ev.InvoiceID))
		return nil
	case billingdomain.InvoicePaymentFailed:
		return s.applyPaymentFailed(ctx, ev)
	case billingdomain.UnknownEvent:
		s.log.Info("ignoring unrecognized billing event",
			zap.String("event_id", ev.ID),
			zap.String("kind", ev.Kind))
		return nil
	default:
		s.log.Warn("billing event with no transition", zap.String("event_id", ev.EventID()))
		return nil
	}
}

func (s *Service) applyChanged(ctx context.Context, ev billingdomain.SubscriptionChanged) error {
	tenant, err := s.resolveTenant(ctx, ev.Meta)
	if err != nil || tenant == nil {
		return err
	}

	status := s.mapExternalStatus(ev.ExternalStatus, ev.ID)
	tier := s.mapPriceTier(ev.PriceID)
	limits := quotadomain.LimitsFor(tier)

	update := tenantdomain.SubscriptionUpdate{
		Status:      status,
		Tier:        tier,
		TrialEndsAt: ev.TrialEndsAt,
		MaxPatients: limits.MaxPatients,
		StorageGB:   limits.StorageGB,
	}
	if err := s.tenantRepo.UpdateSubscription(ctx, s.db, tenant.ID, update); err != nil {
		return err
	}

	s.log.Info("subscription updated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("status", string(status)),
		zap.String("tier", string(tier)))
	return nil
}

func (s *Service) applyDeleted(ctx context.Context, ev billingdomain.SubscriptionDeleted) error {
	tenant, err := s.resolveTenant(ctx, ev.Meta)
	if err != nil || tenant == nil {
		return err
	}

	// Unconditional: deletion cancels regardless of the prior state.
	if err := s.tenantRepo.SetSubscriptionStatus(ctx, s.db, tenant.ID, tenantdomain.SubscriptionStatusCancelled); err != nil {
		return err
	}

	s.log.Info("subscription cancelled", zap.String("tenant_id", tenant.ID.String()))
	return nil
}

func (s *Service) applyPaymentFailed(ctx context.Context, ev billingdomain.InvoicePaymentFailed) error {
	tenant, err := s.resolveTenant(ctx, ev.Meta)
	if err != nil || tenant == nil {
		return err
	}

	if err := s.tenantRepo.SetSubscriptionStatus(ctx, s.db, tenant.ID, tenantdomain.SubscriptionStatusPastDue); err != nil {
		return err
	}

	s.log.Warn("invoice payment failed, tenant past due",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("invoice_id", ev.InvoiceID))
	return nil
}

// resolveTenant prefers the tenant id carried in event metadata and falls
// back to the billing customer id. An event that resolves neither is dropped
// with a log line, never an error: one unattributable delivery must not
// block a batch or trigger endless provider retries.
func (s *Service) resolveTenant(ctx context.Context, meta billingdomain.Meta) (*tenantdomain.Tenant, error) {
	if raw := strings.TrimSpace(meta.TenantID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err == nil {
			tenant, err := s.tenantRepo.FindByID(ctx, s.db, id)
			if err != nil {
				return nil, err
			}
			if tenant != nil {
				return tenant, nil
			}
		}
	}

	if meta.CustomerID != "" {
		tenant, err := s.tenantRepo.FindByStripeCustomerID(ctx, s.db, meta.CustomerID)
		if err != nil {
			return nil, err
		}
		if tenant != nil {
			return tenant, nil
		}
	}

	s.log.Warn("billing event dropped, no tenant resolvable",
		zap.String("event_id", meta.ID),
		zap.String("metadata_tenant_id", meta.TenantID),
		zap.String("customer_id", meta.CustomerID))
	return nil, nil
}

// mapExternalStatus is total over provider status strings. Unrecognized
// values map to ACTIVE: the safe default for a paying customer, logged so the
// mapping table can be extended.
func (s *Service) mapExternalStatus(external, eventID string) tenantdomain.SubscriptionStatus {
	switch strings.ToLower(strings.TrimSpace(external)) {
	case "trialing":
		return tenantdomain.SubscriptionStatusTrial
	case "active":
		return tenantdomain.SubscriptionStatusActive
	case "past_due":
		return tenantdomain.SubscriptionStatusPastDue
	case "canceled", "unpaid", "incomplete_expired":
		return tenantdomain.SubscriptionStatusCancelled
	default:
		s.log.Warn("unexpected external subscription status",
			zap.String("status", external),
			zap.String("event_id", eventID))
		return tenantdomain.SubscriptionStatusActive
	}
}

// mapPriceTier is total over price ids; unknown or unconfigured ids default
// to the STARTER tier.
func (s *Service) mapPriceTier(priceID string) tenantdomain.SubscriptionTier {
	if tier, ok := s.priceTiers[priceID]; ok {
		switch tier {
		case tenantdomain.TierStarter, tenantdomain.TierProfessional, tenantdomain.TierEnterprise:
			return tier
		}
	}
	if priceID != "" {
		s.log.Warn("price id not mapped to a tier, defaulting", zap.String("price_id", priceID))
	}
	return tenantdomain.TierStarter
}
