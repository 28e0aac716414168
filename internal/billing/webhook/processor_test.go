package webhook

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/praxislabs/praxis/internal/billing/domain"
	"github.com/praxislabs/praxis/internal/billing/stripe"
	"github.com/praxislabs/praxis/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingApplier struct {
	events []domain.Event
	err    error
}

func (a *recordingApplier) Apply(_ context.Context, ev domain.Event) error {
	a.events = append(a.events, ev)
	return a.err
}

func newTestProcessor(t *testing.T, secret string) (*Processor, *recordingApplier) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	applier := &recordingApplier{}
	proc := NewProcessor(ProcessorParams{
		Log:     zap.NewNop(),
		Cfg:     config.Config{Stripe: config.StripeConfig{WebhookSecret: secret}},
		Redis:   client,
		Applier: applier,
	})
	return proc, applier
}

func signedPayload(t *testing.T, secret, eventID, kind string) ([]byte, string) {
	t.Helper()
	payload := []byte(`{"id":"` + eventID + `","type":"` + kind + `","data":{"object":{"id":"in_1","customer":"cus_1"}}}`)
	return payload, stripe.SignPayload(secret, payload, time.Now())
}

func TestProcessDispatchesVerifiedEvent(t *testing.T) {
	proc, applier := newTestProcessor(t, "whsec_test")
	payload, header := signedPayload(t, "whsec_test", "evt_1", "invoice.payment_failed")

	require.NoError(t, proc.Process(context.Background(), payload, header))
	require.Len(t, applier.events, 1)
	assert.Equal(t, "evt_1", applier.events[0].EventID())
}

func TestProcessFailsClosedWithoutSecret(t *testing.T) {
	proc, applier := newTestProcessor(t, "")
	payload, header := signedPayload(t, "whsec_test", "evt_1", "invoice.payment_failed")

	err := proc.Process(context.Background(), payload, header)
	assert.ErrorIs(t, err, domain.ErrMissingSecret)
	assert.Empty(t, applier.events)
}

func TestProcessRejectsBadSignatureBeforeDispatch(t *testing.T) {
	proc, applier := newTestProcessor(t, "whsec_test")
	payload, header := signedPayload(t, "whsec_test", "evt_1", "invoice.payment_failed")

	err := proc.Process(context.Background(), append(payload, ' '), header)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Empty(t, applier.events)
}

func TestProcessSuppressesDuplicateDeliveries(t *testing.T) {
	proc, applier := newTestProcessor(t, "whsec_test")
	payload, header := signedPayload(t, "whsec_test", "evt_1", "invoice.payment_failed")

	require.NoError(t, proc.Process(context.Background(), payload, header))
	require.NoError(t, proc.Process(context.Background(), payload, header))

	assert.Len(t, applier.events, 1)
}

func TestProcessAcknowledgesDispatchFailure(t *testing.T) {
	proc, applier := newTestProcessor(t, "whsec_test")
	applier.err = assert.AnError
	payload, header := signedPayload(t, "whsec_test", "evt_1", "invoice.payment_failed")

	assert.NoError(t, proc.Process(context.Background(), payload, header))
	assert.Len(t, applier.events, 1)
}

func TestProcessContinuesWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	applier := &recordingApplier{}
	proc := NewProcessor(ProcessorParams{
		Log:     zap.NewNop(),
		Cfg:     config.Config{Stripe: config.StripeConfig{WebhookSecret: "whsec_test"}},
		Redis:   client,
		Applier: applier,
	})

	mr.Close()

	payload, header := signedPayload(t, "whsec_test", "evt_1", "invoice.payment_failed")
	require.NoError(t, proc.Process(context.Background(), payload, header))
	assert.Len(t, applier.events, 1)
}
