package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Customer is the billing provider's view of a tenant.
type Customer struct {
	ID      string
	Email   string
	Name    string
	Deleted bool
}

type CreateCustomerInput struct {
	Email    string
	Name     string
	Metadata map[string]string
}

type CheckoutSessionInput struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PortalSession struct {
	URL string `json:"url"`
}

// Provider is the synchronous surface of the external billing provider.
// Implementations apply a bounded timeout and surface failures to the caller;
// there is no automatic retry.
type Provider interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*Customer, error)
	CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)
}

type CustomerService interface {
	GetOrCreateCustomer(ctx context.Context, tenantID snowflake.ID) (*Customer, error)
}

type SessionService interface {
	CreateCheckoutSession(ctx context.Context, tenantID snowflake.ID, priceID, successURL, cancelURL string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, tenantID snowflake.ID, returnURL string) (*PortalSession, error)
}

// Applier is implemented by the subscription state machine.
type Applier interface {
	Apply(ctx context.Context, ev Event) error
}

var (
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrMissingSecret       = errors.New("webhook_secret_missing")
	ErrInvalidPayload      = errors.New("invalid_payload")
	ErrNoBillingCustomer   = errors.New("no_billing_customer")
	ErrProviderUnavailable = errors.New("billing_provider_unavailable")
)
