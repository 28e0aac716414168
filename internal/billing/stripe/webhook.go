package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/praxislabs/praxis/internal/billing/domain"
)

// VerifySignature checks the Stripe-Signature header against the raw request
// body. Verification must run over the unparsed bytes: re-serializing the
// payload is not guaranteed to be byte-identical.
func VerifySignature(secret string, payload []byte, sigHeader string) error {
	sigHeader = strings.TrimSpace(sigHeader)
	if sigHeader == "" {
		return domain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return domain.ErrInvalidSignature
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

// SignPayload produces a Stripe-Signature header value for payload, for tests.
func SignPayload(secret string, payload []byte, at time.Time) string {
	timestamp := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripeSubscription struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Status   string            `json:"status"`
	TrialEnd int64             `json:"trial_end"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

type stripeInvoice struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

// ParseEvent maps a verified payload onto the closed billing event set.
// Unrecognized kinds come back as UnknownEvent, never an error, so the
// processor can acknowledge them.
func ParseEvent(payload []byte) (domain.Event, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	switch strings.TrimSpace(event.Type) {
	case "customer.subscription.created", "customer.subscription.updated":
		return parseSubscriptionChanged(event)
	case "customer.subscription.deleted":
		return parseSubscriptionDeleted(event)
	case "invoice.payment_succeeded":
		inv, meta, err := parseInvoice(event)
		if err != nil {
			return nil, err
		}
		return domain.InvoicePaymentSucceeded{Meta: meta, InvoiceID: inv.ID}, nil
	case "invoice.payment_failed":
		inv, meta, err := parseInvoice(event)
		if err != nil {
			return nil, err
		}
		return domain.InvoicePaymentFailed{Meta: meta, InvoiceID: inv.ID}, nil
	default:
		return domain.UnknownEvent{
			Meta: domain.Meta{ID: event.ID, OccurredAt: eventTime(event.Created)},
			Kind: event.Type,
		}, nil
	}
}

func parseSubscriptionChanged(event stripeEvent) (domain.Event, error) {
	var sub stripeSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	var priceID string
	if len(sub.Items.Data) > 0 {
		priceID = sub.Items.Data[0].Price.ID
	}

	var trialEnd *time.Time
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0).UTC()
		trialEnd = &t
	}

	return domain.SubscriptionChanged{
		Meta: domain.Meta{
			ID:         event.ID,
			TenantID:   sub.Metadata["tenant_id"],
			CustomerID: sub.Customer,
			OccurredAt: eventTime(event.Created),
		},
		SubscriptionID: sub.ID,
		ExternalStatus: sub.Status,
		PriceID:        priceID,
		TrialEndsAt:    trialEnd,
	}, nil
}

func parseSubscriptionDeleted(event stripeEvent) (domain.Event, error) {
	var sub stripeSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	return domain.SubscriptionDeleted{
		Meta: domain.Meta{
			ID:         event.ID,
			TenantID:   sub.Metadata["tenant_id"],
			CustomerID: sub.Customer,
			OccurredAt: eventTime(event.Created),
		},
		SubscriptionID: sub.ID,
	}, nil
}

func parseInvoice(event stripeEvent) (stripeInvoice, domain.Meta, error) {
	var inv stripeInvoice
	if err := json.Unmarshal(event.Data.Object, &inv); err != nil {
		return stripeInvoice{}, domain.Meta{}, domain.ErrInvalidPayload
	}
	meta := domain.Meta{
		ID:         event.ID,
		TenantID:   inv.Metadata["tenant_id"],
		CustomerID: inv.Customer,
		OccurredAt: eventTime(event.Created),
	}
	return inv, meta, nil
}

func eventTime(created int64) time.Time {
	if created == 0 {
		return time.Now().UTC()
	}
	return time.Unix(created, 0).UTC()
}
