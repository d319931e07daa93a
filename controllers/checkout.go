package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/orders"
	"go-storefront/pricing"
	"go-storefront/repository"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// CheckoutController drives the checkout flow: quoting cart totals, placing
// orders, handling the hosted-payment return URL and explicit retries.
type CheckoutController struct {
	Service *orders.Service
	Engine  *pricing.Engine
	Carts   repository.CartRepository
	Coupons repository.CouponRepository
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(service *orders.Service, engine *pricing.Engine, carts repository.CartRepository, coupons repository.CouponRepository) *CheckoutController {
	return &CheckoutController{
		Service: service,
		Engine:  engine,
		Carts:   carts,
		Coupons: coupons,
	}
}

// Quote prices the current cart with an optional coupon code. The client
// calls this after every cart mutation; a coupon that was valid a moment ago
// can stop being valid when the cart shrinks.
func (cc *CheckoutController) Quote(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r)
	if ownerID == "" {
		http.Error(w, "Missing guest session", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Carts.Get(ctx, ownerID)
	if err != nil {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}

	coupons, err := cc.Coupons.List(ctx)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	code := r.URL.Query().Get("coupon")
	result, validation, err := cc.Engine.ComputeTotals(cart.Items, coupons, code, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"pricing": result,
		"coupon":  validation,
	})
}

// Checkout places an order from the submitted cart snapshot and dispatches
// the chosen payment method. Works for guests and signed-in users alike.
func (cc *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Customer   models.CustomerInfo  `json:"customer"`
		Items      []models.CartItem    `json:"items"`
		CouponCode string               `json:"coupon_code"`
		Method     models.PaymentMethod `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req := orders.CheckoutRequest{
		Customer:    input.Customer,
		Items:       input.Items,
		CouponCode:  input.CouponCode,
		Method:      input.Method,
		CartOwnerID: middleware.OwnerID(r),
	}
	if claims, ok := middleware.ClaimsFrom(r); ok {
		req.UserID = claims.Email
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	resp, err := cc.Service.Checkout(ctx, req)
	if err != nil {
		cc.writeCheckoutError(w, resp, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// PaymentReturn is the hosted-checkout return URL. The query parameters are
// client-supplied and only name which order and session to verify; the
// payment state itself always comes from the gateway.
func (cc *CheckoutController) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	sessionID := r.URL.Query().Get("session_id")
	if orderID == "" || sessionID == "" {
		http.Error(w, "Missing order_id or session_id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	order, paid, err := cc.Service.ConfirmHostedReturn(ctx, orderID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, orders.ErrSessionMismatch):
			http.Error(w, "Payment session does not match order", http.StatusBadRequest)
		case errors.Is(err, orders.ErrPaymentUnavailable):
			http.Error(w, "Could not verify payment, please contact support with your order id", http.StatusBadGateway)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id":       order.ID.Hex(),
		"order_number":   order.OrderNumber,
		"paid":           paid,
		"payment_status": order.PaymentStatus,
		"order_status":   order.OrderStatus,
	})
}

// RetryPayment re-dispatches payment for a failed or abandoned order. Always
// an explicit user action, never automatic.
func (cc *CheckoutController) RetryPayment(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	resp, err := cc.Service.Retry(ctx, orderID)
	if err != nil {
		cc.writeCheckoutError(w, resp, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeCheckoutError maps orchestrator errors to HTTP responses. When a
// pending order already exists its id is included so the user (and support)
// can pick the attempt back up.
func (cc *CheckoutController) writeCheckoutError(w http.ResponseWriter, resp *orders.CheckoutResponse, err error) {
	switch {
	case errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrMissingCustomerInfo),
		errors.Is(err, orders.ErrInvalidMethod),
		errors.Is(err, orders.ErrInvalidCoupon),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidPrice):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, orders.ErrOrderNotFound):
		http.Error(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, orders.ErrAlreadyPaid):
		http.Error(w, "Order is already paid", http.StatusConflict)
	case errors.Is(err, orders.ErrPaymentUnavailable):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		body := map[string]interface{}{
			"error": "Payment service unavailable. Your order was saved; retry the payment or contact support.",
		}
		if resp != nil {
			body["order_id"] = resp.OrderID
			body["order_number"] = resp.OrderNumber
		}
		json.NewEncoder(w).Encode(body)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
