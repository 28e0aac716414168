package stripe

import (
	"testing"
	"time"

	"github.com/praxislabs/praxis/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed"}`)
	header := SignPayload(secret, payload, time.Now())

	assert.NoError(t, VerifySignature(secret, payload, header))
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1"}`)
	header := SignPayload(secret, payload, time.Now())

	tampered := []byte(`{"id":"evt_2"}`)
	assert.ErrorIs(t, VerifySignature(secret, tampered, header), domain.ErrInvalidSignature)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignPayload("whsec_other", payload, time.Now())

	assert.ErrorIs(t, VerifySignature("whsec_test", payload, header), domain.ErrInvalidSignature)
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)

	for _, header := range []string{"", "garbage", "t=123", "v1=deadbeef"} {
		assert.ErrorIs(t, VerifySignature("whsec_test", payload, header), domain.ErrInvalidSignature, "header %q", header)
	}
}

func TestVerifySignatureAcceptsAnyValidV1(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1"}`)
	valid := SignPayload(secret, payload, time.Now())

	// Stripe sends multiple v1 entries during secret rotation.
	header := valid + ",v1=deadbeef"
	assert.NoError(t, VerifySignature(secret, payload, header))
}

func TestParseEventSubscriptionUpdated(t *testing.T) {
	payload := []byte(`{
		"id": "evt_sub_1",
		"type": "customer.subscription.updated",
		"created": 1700000000,
		"data": {"object": {
			"id": "sub_1",
			"customer": "cus_1",
			"status": "past_due",
			"trial_end": 1700600000,
			"metadata": {"tenant_id": "42"},
			"items": {"data": [{"price": {"id": "price_pro"}}]}
		}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)

	changed, ok := event.(domain.SubscriptionChanged)
	require.True(t, ok)
	assert.Equal(t, "evt_sub_1", changed.EventID())
	assert.Equal(t, "42", changed.TenantID)
	assert.Equal(t, "cus_1", changed.CustomerID)
	assert.Equal(t, "sub_1", changed.SubscriptionID)
	assert.Equal(t, "past_due", changed.ExternalStatus)
	assert.Equal(t, "price_pro", changed.PriceID)
	require.NotNil(t, changed.TrialEndsAt)
	assert.Equal(t, time.Unix(1700600000, 0).UTC(), *changed.TrialEndsAt)
}

func TestParseEventSubscriptionDeleted(t *testing.T) {
	payload := []byte(`{
		"id": "evt_del_1",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "metadata": {}}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)

	deleted, ok := event.(domain.SubscriptionDeleted)
	require.True(t, ok)
	assert.Equal(t, "cus_1", deleted.CustomerID)
	assert.Equal(t, "sub_1", deleted.SubscriptionID)
}

func TestParseEventInvoicePaymentFailed(t *testing.T) {
	payload := []byte(`{
		"id": "evt_inv_1",
		"type": "invoice.payment_failed",
		"data": {"object": {"id": "in_1", "customer": "cus_1"}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)

	failed, ok := event.(domain.InvoicePaymentFailed)
	require.True(t, ok)
	assert.Equal(t, "in_1", failed.InvoiceID)
	assert.Equal(t, "cus_1", failed.CustomerID)
}

func TestParseEventUnknownKind(t *testing.T) {
	payload := []byte(`{"id": "evt_x", "type": "charge.refunded", "data": {"object": {}}}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)

	unknown, ok := event.(domain.UnknownEvent)
	require.True(t, ok)
	assert.Equal(t, "charge.refunded", unknown.Kind)
	assert.Equal(t, "evt_x", unknown.EventID())
}

func TestParseEventRejectsGarbage(t *testing.T) {
	_, err := ParseEvent([]byte("not json"))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = ParseEvent([]byte(`{"type": "customer.subscription.updated"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
