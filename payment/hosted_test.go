package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
)

type fakeGateway struct {
	redirectURL string
	sessionID   string
	createErr   error

	lastSession CheckoutSession
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, sess CheckoutSession) (string, string, error) {
	f.lastSession = sess
	return f.redirectURL, f.sessionID, f.createErr
}

func (f *fakeGateway) VerifySession(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func TestHostedStrategy(t *testing.T) {
	gateway := &fakeGateway{redirectURL: "https://pay.example.com/s/abc", sessionID: "sess_abc"}
	strategy := NewHostedStrategy(gateway, "https://shop.example.com/return", "https://shop.example.com/cancel")

	result, err := strategy.Pay(context.Background(), Request{
		OrderID:  "order1",
		Amount:   1100,
		Customer: models.CustomerInfo{Email: "buyer@example.com"},
	})
	require.NoError(t, err)

	// Hosted checkout never resolves in-process.
	assert.False(t, result.Succeeded)
	assert.True(t, result.Pending)
	assert.Equal(t, "https://pay.example.com/s/abc", result.RedirectURL)
	assert.Equal(t, "sess_abc", result.SessionID)

	assert.Equal(t, "order1", gateway.lastSession.OrderID)
	assert.NotEmpty(t, gateway.lastSession.Reference)
	assert.Equal(t, "https://shop.example.com/return", gateway.lastSession.SuccessURL)
}

func TestGatewayClientCreateCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var sess CheckoutSession
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sess))
		assert.Equal(t, "order1", sess.OrderID)

		json.NewEncoder(w).Encode(checkoutSessionResponse{
			SessionID:   "sess_123",
			RedirectURL: "https://pay.example.com/s/123",
		})
	}))
	defer server.Close()

	client := NewGatewayClient(server.URL, "test-key", 5*time.Second)
	redirectURL, sessionID, err := client.CreateCheckoutSession(context.Background(), CheckoutSession{OrderID: "order1", Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/123", redirectURL)
	assert.Equal(t, "sess_123", sessionID)
}

func TestGatewayClientVerifySession(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		httpStatus int
		wantPaid   bool
		wantErr    bool
	}{
		{name: "paid session", status: "paid", httpStatus: http.StatusOK, wantPaid: true},
		{name: "unpaid session", status: "unpaid", httpStatus: http.StatusOK, wantPaid: false},
		{name: "gateway error", httpStatus: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/checkout/sessions/sess_123", r.URL.Path)
				if tt.httpStatus != http.StatusOK {
					w.WriteHeader(tt.httpStatus)
					return
				}
				json.NewEncoder(w).Encode(sessionStatusResponse{SessionID: "sess_123", Status: tt.status})
			}))
			defer server.Close()

			client := NewGatewayClient(server.URL, "test-key", 5*time.Second)
			paid, err := client.VerifySession(context.Background(), "sess_123")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, paid)
		})
	}
}

func TestGatewayClientCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "card", body["method"])

		json.NewEncoder(w).Encode(chargeResponse{Status: "declined", Note: "card expired"})
	}))
	defer server.Close()

	client := NewGatewayClient(server.URL, "test-key", 5*time.Second)
	ok, note, err := client.Charge(context.Background(), models.PaymentCard, Request{OrderID: "order1", Amount: 500})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "card expired", note)
}
