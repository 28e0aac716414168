package domain

import (
	"time"
)

// Event is the closed set of billing-provider webhook notifications the core
// reacts to. Each variant carries only the fields its transition needs;
// EventUnknown makes the "ignore unrecognized kinds" path an explicit branch.
type Event interface {
	// EventID is the provider's delivery identifier, used for duplicate
	// suppression.
	EventID() string
	isEvent()
}

// Meta is the attribution shared by all variants. TenantID comes from event
// metadata and may be empty; CustomerID is the provider-side customer and is
// the fallback for resolving the tenant.
type Meta struct {
	ID         string
	TenantID   string
	CustomerID string
	OccurredAt time.Time
}

func (m Meta) EventID() string { return m.ID }

// SubscriptionChanged covers both subscription created and updated
// deliveries; the transition is derived entirely from the payload, so the
// two kinds are indistinguishable to the state machine.
type SubscriptionChanged struct {
	Meta
	SubscriptionID string
	// ExternalStatus is the provider's status string, mapped to an internal
	// status by the state machine.
	ExternalStatus string
	PriceID        string
	TrialEndsAt    *time.Time
}

type SubscriptionDeleted struct {
	Meta
	SubscriptionID string
}

type InvoicePaymentSucceeded struct {
	Meta
	InvoiceID string
}

// InvoicePaymentFailed often arrives without tenant metadata; the state
// machine resolves the tenant by CustomerID.
type InvoicePaymentFailed struct {
	Meta
	InvoiceID string
}

type UnknownEvent struct {
	Meta
	Kind string
}

func (SubscriptionChanged) isEvent()     {}
func (SubscriptionDeleted) isEvent()     {}
func (InvoicePaymentSucceeded) isEvent() {}
func (InvoicePaymentFailed) isEvent()    {}
func (UnknownEvent) isEvent()            {}
