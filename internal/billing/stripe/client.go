// Package stripe talks to the Stripe REST API directly. Requests are
// form-encoded, authenticated with the secret key, and bounded by the client
// timeout so a slow provider call cannot hang a request.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis/internal/billing/domain"
	"github.com/praxislabs/praxis/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const apiBase = "https://api.stripe.com/v1"

type ClientParams struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

type Client struct {
	apiKey       string
	baseURL      string
	portalConfig string
	http         *http.Client
	log          *zap.Logger
}

func NewClient(p ClientParams) domain.Provider {
	return &Client{
		apiKey:       strings.TrimSpace(p.Cfg.Stripe.APIKey),
		baseURL:      apiBase,
		portalConfig: strings.TrimSpace(p.Cfg.Stripe.PortalConfig),
		http:         &http.Client{Timeout: 10 * time.Second},
		log:          p.Log.Named("billing.stripe"),
	}
}

// NewClientForTest points the client at a stub server.
func NewClientForTest(baseURL, apiKey string, log *zap.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log.Named("billing.stripe"),
	}
}

type stripeCustomer struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	var cust stripeCustomer
	if err := c.get(ctx, "/customers/"+url.PathEscape(id), &cust); err != nil {
		return nil, err
	}

	return &domain.Customer{
		ID:      cust.ID,
		Email:   cust.Email,
		Name:    cust.Name,
		Deleted: cust.Deleted,
	}, nil
}

func (c *Client) CreateCustomer(ctx context.Context, input domain.CreateCustomerInput) (*domain.Customer, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("email", input.Email)
	data.Set("name", input.Name)
	for k, v := range input.Metadata {
		data.Set("metadata["+k+"]", v)
	}

	var cust stripeCustomer
	if err := c.post(ctx, "/customers", data, &cust); err != nil {
		return nil, err
	}

	return &domain.Customer{ID: cust.ID, Email: cust.Email, Name: cust.Name}, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, input domain.CheckoutSessionInput) (*domain.CheckoutSession, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("mode", "subscription")
	data.Set("customer", input.CustomerID)
	data.Set("line_items[0][price]", input.PriceID)
	data.Set("line_items[0][quantity]", "1")
	data.Set("success_url", input.SuccessURL)
	data.Set("cancel_url", input.CancelURL)
	// Metadata rides on both the session and the subscription it creates so
	// webhook deliveries can be attributed without a customer lookup.
	for k, v := range input.Metadata {
		data.Set("metadata["+k+"]", v)
		data.Set("subscription_data[metadata]["+k+"]", v)
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/checkout/sessions", data, &session); err != nil {
		return nil, err
	}

	return &domain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*domain.PortalSession, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("customer", customerID)
	data.Set("return_url", returnURL)
	if c.portalConfig != "" {
		data.Set("configuration", c.portalConfig)
	}

	var session struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/billing_portal/sessions", data, &session); err != nil {
		return nil, err
	}

	return &domain.PortalSession{URL: session.URL}, nil
}

func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return errors.New("stripe api key not configured")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, data url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("stripe api error: %d body: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
