package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/praxislabs/praxis/internal/billing/domain"
	"go.uber.org/zap"
)

// Provider payloads are small; anything larger is hostile.
const maxWebhookBody = 1 << 20

// PostStripeWebhook
// POST /webhooks/stripe
//
// The signature covers the raw body bytes, so the body must not pass through
// any decoder before verification.
func (s *Server) PostStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	err = s.webhookProc.Process(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		webhookEventsTotal.WithLabelValues("accepted").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, billingdomain.ErrMissingSecret):
		// No secret means no delivery can be verified; a 4xx keeps the
		// provider from retrying what we will never accept.
		webhookEventsTotal.WithLabelValues("misconfigured").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook not configured"})
	case errors.Is(err, billingdomain.ErrInvalidSignature):
		webhookEventsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
	case errors.Is(err, billingdomain.ErrInvalidPayload):
		webhookEventsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
	default:
		s.log.Error("webhook processing failed", zap.Error(err))
		webhookEventsTotal.WithLabelValues("failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
