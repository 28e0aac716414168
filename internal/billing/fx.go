package billing

import (
	"github.com/praxislabs/praxis/internal/billing/service"
	"github.com/praxislabs/praxis/internal/billing/stripe"
	"github.com/praxislabs/praxis/internal/billing/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(stripe.NewClient),
	fx.Provide(service.NewCustomerService),
	fx.Provide(service.NewSessionService),
	fx.Provide(webhook.NewProcessor),
)
