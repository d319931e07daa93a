package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"go-storefront/models"
)

// CheckoutSession is the request for a hosted checkout page.
type CheckoutSession struct {
	OrderID    string            `json:"order_id"`
	Reference  string            `json:"reference"` // gateway-side idempotency key
	Amount     float64           `json:"amount"`
	Customer   string            `json:"customer_email"`
	Items      []models.CartItem `json:"items"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
}

// Gateway is the payment processor contract for hosted checkout. VerifySession
// must be called server-side before an order is marked paid; the success
// redirect alone is never proof of payment.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, sess CheckoutSession) (redirectURL, sessionID string, err error)
	VerifySession(ctx context.Context, sessionID string) (paid bool, err error)
}

// HostedStrategy redirects the customer to the gateway's checkout page. The
// payment outcome is recovered out-of-band via the return URL and verified
// through the Gateway.
type HostedStrategy struct {
	gateway    Gateway
	successURL string
	cancelURL  string
}

// NewHostedStrategy creates the hosted-redirect strategy.
func NewHostedStrategy(gateway Gateway, successURL, cancelURL string) *HostedStrategy {
	return &HostedStrategy{gateway: gateway, successURL: successURL, cancelURL: cancelURL}
}

func (s *HostedStrategy) Method() models.PaymentMethod { return models.PaymentHostedRedirect }

func (s *HostedStrategy) Pay(ctx context.Context, req Request) (Result, error) {
	redirectURL, sessionID, err := s.gateway.CreateCheckoutSession(ctx, CheckoutSession{
		OrderID:    req.OrderID,
		Reference:  uuid.NewString(),
		Amount:     req.Amount,
		Customer:   req.Customer.Email,
		Items:      req.Items,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return Result{Pending: true, RedirectURL: redirectURL, SessionID: sessionID}, nil
}

// GatewayClient talks to the external payment processor over HTTP. It backs
// both the hosted checkout flow and the synchronous charge strategies.
type GatewayClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGatewayClient creates a gateway client for the given endpoint.
func NewGatewayClient(baseURL, apiKey string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type checkoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type sessionStatusResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"` // "paid" or "unpaid"
}

type chargeResponse struct {
	Status string `json:"status"` // "succeeded" or "declined"
	Note   string `json:"note"`
}

// CreateCheckoutSession asks the gateway for a hosted checkout page.
func (c *GatewayClient) CreateCheckoutSession(ctx context.Context, sess CheckoutSession) (string, string, error) {
	var resp checkoutSessionResponse
	if err := c.post(ctx, "/v1/checkout/sessions", sess, &resp); err != nil {
		return "", "", err
	}
	if resp.SessionID == "" || resp.RedirectURL == "" {
		return "", "", fmt.Errorf("gateway returned incomplete session")
	}
	return resp.RedirectURL, resp.SessionID, nil
}

// VerifySession fetches the authoritative payment state for a session.
func (c *GatewayClient) VerifySession(ctx context.Context, sessionID string) (bool, error) {
	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to verify session: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code: %d", httpResp.StatusCode)
	}

	var status sessionStatusResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("failed to decode session status: %w", err)
	}
	return status.Status == "paid", nil
}

// Charge runs a synchronous payment for card, UPI and net-banking methods.
func (c *GatewayClient) Charge(ctx context.Context, method models.PaymentMethod, payReq Request) (bool, string, error) {
	body := map[string]interface{}{
		"order_id":  payReq.OrderID,
		"reference": uuid.NewString(),
		"method":    method,
		"amount":    payReq.Amount,
		"customer":  payReq.Customer.Email,
	}

	var resp chargeResponse
	if err := c.post(ctx, "/v1/charges", body, &resp); err != nil {
		return false, "", err
	}
	return resp.Status == "succeeded", resp.Note, nil
}

func (c *GatewayClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", httpResp.StatusCode)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
