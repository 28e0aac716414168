// Package webhook authenticates and dispatches billing-provider deliveries.
package webhook

import (
	"context"
	"time"

	"github.com/praxislabs/praxis/internal/billing/domain"
	"github.com/praxislabs/praxis/internal/billing/stripe"
	"github.com/praxislabs/praxis/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// eventKeyTTL must cover the provider's maximum redelivery window; Stripe
// retries for up to 72 hours.
const eventKeyTTL = 72 * time.Hour

type ProcessorParams struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Redis   *redis.Client
	Applier domain.Applier
}

type Processor struct {
	log     *zap.Logger
	secret  string
	redis   *redis.Client
	applier domain.Applier
}

func NewProcessor(p ProcessorParams) *Processor {
	return &Processor{
		log:     p.Log.Named("billing.webhook"),
		secret:  p.Cfg.Stripe.WebhookSecret,
		redis:   p.Redis,
		applier: p.Applier,
	}
}

// Process verifies the delivery against the raw body bytes and dispatches it.
// Only authentication failures return an error; once a delivery is
// authenticated it is acknowledged regardless of what the dispatch does, so
// the provider never retries an event we cannot use.
func (p *Processor) Process(ctx context.Context, payload []byte, sigHeader string) error {
	if p.secret == "" {
		// Configuration error, not a runtime event: fail closed.
		p.log.Error("webhook signing secret not configured")
		return domain.ErrMissingSecret
	}

	if err := stripe.VerifySignature(p.secret, payload, sigHeader); err != nil {
		p.log.Warn("webhook signature rejected", zap.Int("payload_size", len(payload)))
		return err
	}

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		return err
	}

	if p.seen(ctx, event.EventID()) {
		p.log.Info("duplicate webhook delivery suppressed", zap.String("event_id", event.EventID()))
		return nil
	}

	if err := p.applier.Apply(ctx, event); err != nil {
		// Dispatch failures are logged but still acknowledged; the
		// transitions are idempotent and an unresolvable event must not
		// make the provider retry forever.
		p.log.Error("webhook dispatch failed",
			zap.String("event_id", event.EventID()),
			zap.Error(err))
	}

	return nil
}

// seen records the event id and reports whether it was already processed.
// Redis unavailability degrades to processing the event: the transitions are
// idempotent per payload, so availability wins over strict deduplication.
func (p *Processor) seen(ctx context.Context, eventID string) bool {
	if p.redis == nil || eventID == "" {
		return false
	}
	ok, err := p.redis.SetNX(ctx, "stripe:event:"+eventID, 1, eventKeyTTL).Result()
	if err != nil {
		p.log.Warn("event dedupe store unavailable", zap.Error(err))
		return false
	}
	return !ok
}
