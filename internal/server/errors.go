package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accessguard "github.com/praxislabs/praxis/internal/access"
	authdomain "github.com/praxislabs/praxis/internal/auth/domain"
	billingdomain "github.com/praxislabs/praxis/internal/billing/domain"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrUnauthorized = &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication required"}
	ErrForbidden    = &apiError{Status: http.StatusForbidden, Code: "forbidden", Message: "access denied"}
)

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body is invalid"}
}

// AbortWithError translates domain errors into HTTP responses. Unmapped
// errors are deliberately opaque 500s; their detail stays in the logs.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal error"

	switch {
	case errors.Is(err, authdomain.ErrUnauthenticated), errors.Is(err, accessguard.ErrUnauthenticated):
		status, code, message = http.StatusUnauthorized, "unauthorized", "authentication required"
	case errors.Is(err, accessguard.ErrTenantRequired):
		status, code, message = http.StatusForbidden, "tenant_required", "no tenant context for this request"
	case errors.Is(err, accessguard.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "access denied"
	case errors.Is(err, tenantdomain.ErrTenantNotFound):
		status, code, message = http.StatusNotFound, "tenant_not_found", "tenant not found"
	case errors.Is(err, tenantdomain.ErrMembershipNotFound):
		status, code, message = http.StatusNotFound, "membership_not_found", "membership not found"
	case errors.Is(err, tenantdomain.ErrMembershipExists):
		status, code, message = http.StatusConflict, "membership_exists", "user is already a member"
	case errors.Is(err, tenantdomain.ErrInvalidRole):
		status, code, message = http.StatusBadRequest, "invalid_role", "role is not assignable"
	case errors.Is(err, tenantdomain.ErrInvalidName):
		status, code, message = http.StatusBadRequest, "invalid_name", "name must not be empty"
	case errors.Is(err, billingdomain.ErrNoBillingCustomer):
		status, code, message = http.StatusConflict, "no_billing_customer", "tenant has no billing customer"
	case errors.Is(err, billingdomain.ErrProviderUnavailable):
		status, code, message = http.StatusBadGateway, "billing_provider_unavailable", "billing provider unavailable"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": &apiError{Status: status, Code: code, Message: message}})
}
