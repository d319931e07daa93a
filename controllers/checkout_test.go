package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
	"go-storefront/orders"
	"go-storefront/payment"
	"go-storefront/pricing"
	"go-storefront/repository"
)

type stubNotifier struct{}

func (stubNotifier) SendOrderConfirmationEmail(models.Order) error { return nil }
func (stubNotifier) SendPaymentFailedEmail(models.Order) error     { return nil }

type stubGateway struct {
	paid map[string]bool
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, sess payment.CheckoutSession) (string, string, error) {
	return "https://pay.example.com/s/" + sess.OrderID, "sess_" + sess.OrderID, nil
}

func (g *stubGateway) VerifySession(_ context.Context, sessionID string) (bool, error) {
	return g.paid[sessionID], nil
}

type testEnv struct {
	checkout *CheckoutController
	coupons  *repository.InMemoryCouponRepository
	carts    *repository.InMemoryCartRepository
	orders   *repository.InMemoryOrderRepository
	gateway  *stubGateway
}

func newTestEnv(t *testing.T, coupons ...models.Coupon) *testEnv {
	t.Helper()

	env := &testEnv{
		coupons: repository.NewInMemoryCouponRepository(coupons...),
		carts:   repository.NewInMemoryCartRepository(),
		orders:  repository.NewInMemoryOrderRepository(),
		gateway: &stubGateway{paid: make(map[string]bool)},
	}

	engine := pricing.NewEngine(50, 999)
	dispatcher := payment.NewDispatcher(
		payment.NewCODStrategy(),
		payment.NewHostedStrategy(env.gateway, "https://shop.example.com/return", "https://shop.example.com/cancel"),
	)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := orders.NewService(env.orders, env.coupons, env.carts, engine, dispatcher, env.gateway, stubNotifier{}, log)

	env.checkout = NewCheckoutController(service, engine, env.carts, env.coupons)
	return env
}

func newRouter(env *testEnv) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/checkout", env.checkout.Checkout).Methods("POST")
	router.HandleFunc("/checkout/quote", env.checkout.Quote).Methods("GET")
	router.HandleFunc("/payment/return", env.checkout.PaymentReturn).Methods("GET")
	router.HandleFunc("/orders/{id}/retry", env.checkout.RetryPayment).Methods("POST")
	return router
}

func checkoutBody(method models.PaymentMethod, couponCode string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"customer": models.CustomerInfo{
			Name:  "Asha Rao",
			Email: "asha@example.com",
			Address: models.Address{
				Street: "12 Lake Road", City: "Pune", State: "MH", ZipCode: "411001",
			},
		},
		"items": []models.CartItem{
			{Name: "Headphones", UnitPrice: 600, Quantity: 2},
		},
		"coupon_code":    couponCode,
		"payment_method": method,
	})
	return body
}

func TestCheckoutEndpoint(t *testing.T) {
	maxDiscount := 100.0
	env := newTestEnv(t, models.Coupon{
		Code:          "SAVE10",
		DiscountType:  models.DiscountPercentage,
		Value:         10,
		MinOrderValue: 999,
		MaxDiscount:   &maxDiscount,
		UsageLimit:    5,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidTo:       time.Now().Add(time.Hour),
		IsActive:      true,
	})
	router := newRouter(env)

	t.Run("cod checkout confirms immediately", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(checkoutBody(models.PaymentCOD, "SAVE10")))
		req.Header.Set("X-Guest-Session", "guest-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp orders.CheckoutResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, models.PaymentCompleted, resp.PaymentStatus)
		assert.Equal(t, models.OrderConfirmed, resp.OrderStatus)
		assert.Equal(t, 1100.0, resp.Pricing.Total)
	})

	t.Run("invalid coupon is rejected before persistence", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(checkoutBody(models.PaymentCOD, "NOSUCH")))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(checkoutBody("barter", "")))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPaymentReturnEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	// Place a hosted-redirect order first.
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(checkoutBody(models.PaymentHostedRedirect, "")))
	req.Header.Set("X-Guest-Session", "guest-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var placed orders.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	require.NotEmpty(t, placed.RedirectURL)
	sessionID := "sess_" + placed.OrderID

	t.Run("unpaid session keeps order pending", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payment/return?order_id="+placed.OrderID+"&session_id="+sessionID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["paid"])
		assert.Equal(t, string(models.PaymentPending), body["payment_status"])
	})

	t.Run("forged session id is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payment/return?order_id="+placed.OrderID+"&session_id=sess_forged", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("paid session confirms order", func(t *testing.T) {
		env.gateway.paid[sessionID] = true

		req := httptest.NewRequest(http.MethodGet, "/payment/return?order_id="+placed.OrderID+"&session_id="+sessionID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["paid"])
		assert.Equal(t, string(models.OrderConfirmed), body["order_status"])
	})

	t.Run("retrying the paid order conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders/"+placed.OrderID+"/retry", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestQuoteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	require.NoError(t, env.carts.Put(context.Background(), &models.Cart{
		OwnerID: "guest-3",
		Items:   []models.CartItem{{Name: "Mug", UnitPrice: 250, Quantity: 2}},
	}))

	req := httptest.NewRequest(http.MethodGet, "/checkout/quote", nil)
	req.Header.Set("X-Guest-Session", "guest-3")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Pricing models.PricingResult `json:"pricing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 500.0, body.Pricing.Subtotal)
	assert.Equal(t, 50.0, body.Pricing.ShippingCost)
	assert.Equal(t, 550.0, body.Pricing.Total)
}
