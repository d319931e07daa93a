package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go-storefront/models"
	"go-storefront/payment"
	"go-storefront/pricing"
	"go-storefront/repository"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingCustomerInfo = errors.New("customer name, email and address are required")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrInvalidCoupon       = errors.New("coupon is not valid")
	ErrOrderNotFound       = errors.New("order not found")
	ErrAlreadyPaid         = errors.New("order is already paid")
	ErrSessionMismatch     = errors.New("payment session does not match order")

	// ErrPaymentUnavailable wraps transport failures from the payment
	// gateway. The order stays pending and is never retried automatically;
	// retrying a possibly-charged payment can double-charge the customer.
	ErrPaymentUnavailable = errors.New("payment service unavailable")
)

// Notifier sends customer-facing order emails.
type Notifier interface {
	SendOrderConfirmationEmail(order models.Order) error
	SendPaymentFailedEmail(order models.Order) error
}

// CheckoutRequest is the input to a checkout attempt. CartOwnerID identifies
// whose cart to clear on success; it may be a guest session id.
type CheckoutRequest struct {
	Customer    models.CustomerInfo
	Items       []models.CartItem
	CouponCode  string
	Method      models.PaymentMethod
	UserID      string
	CartOwnerID string
}

// CheckoutResponse reports the outcome of a checkout attempt. For hosted
// redirects RedirectURL is set and the order is still awaiting payment.
type CheckoutResponse struct {
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Pricing       models.PricingResult `json:"pricing"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	OrderStatus   models.OrderStatus   `json:"order_status"`
	RedirectURL   string               `json:"redirect_url,omitempty"`
	FailureNote   string               `json:"failure_note,omitempty"`
}

// Service orchestrates checkout: it prices the cart, persists a pending
// order, dispatches the payment strategy and reconciles the outcome back into
// order state. Each checkout attempt is isolated; no failure here is fatal to
// the process.
type Service struct {
	orders     repository.OrderRepository
	coupons    repository.CouponRepository
	carts      repository.CartRepository
	engine     *pricing.Engine
	dispatcher *payment.Dispatcher
	gateway    payment.Gateway
	notifier   Notifier
	log        *slog.Logger

	seq uint64 // per-process order number sequence, display only
	now func() time.Time
}

// NewService wires the checkout orchestrator.
func NewService(
	orders repository.OrderRepository,
	coupons repository.CouponRepository,
	carts repository.CartRepository,
	engine *pricing.Engine,
	dispatcher *payment.Dispatcher,
	gateway payment.Gateway,
	notifier Notifier,
	log *slog.Logger,
) *Service {
	return &Service{
		orders:     orders,
		coupons:    coupons,
		carts:      carts,
		engine:     engine,
		dispatcher: dispatcher,
		gateway:    gateway,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// Checkout validates the request, prices the cart, persists a pending order
// and dispatches the chosen payment strategy. The order row always exists
// before any payment attempt, so a gateway crash can never leave an orphaned
// payment.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if req.Customer.Name == "" || req.Customer.Email == "" || req.Customer.Address.Street == "" {
		return nil, ErrMissingCustomerInfo
	}
	if !models.ValidMethod(req.Method) || !s.dispatcher.Supports(req.Method) {
		return nil, ErrInvalidMethod
	}

	// Price the cart, re-validating the coupon against current contents.
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	result, validation, err := s.engine.ComputeTotals(req.Items, coupons, req.CouponCode, s.now())
	if err != nil {
		return nil, err
	}
	if req.CouponCode != "" && !validation.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCoupon, validation.Reason)
	}

	appliedCoupon := ""
	if validation.Valid {
		appliedCoupon = validation.Coupon.Code
	}

	order := &models.Order{
		OrderNumber:    s.nextOrderNumber(),
		UserID:         req.UserID,
		Customer:       req.Customer,
		Items:          req.Items,
		Subtotal:       result.Subtotal,
		CouponDiscount: result.CouponDiscount,
		ShippingCost:   result.ShippingCost,
		Total:          result.Total,
		PaymentMethod:  req.Method,
		PaymentStatus:  models.PaymentPending,
		CartOwnerID:    req.CartOwnerID,
		OrderStatus:    models.OrderPending,
		AppliedCoupon:  appliedCoupon,
		CreatedAt:      s.now(),
		UpdatedAt:      s.now(),
	}

	orderID, err := s.orders.Insert(ctx, order)
	if err != nil {
		// Nothing was dispatched; the user can simply retry checkout.
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.log.Info("pending order created",
		"order_id", orderID,
		"order_number", order.OrderNumber,
		"method", req.Method,
		"total", order.Total,
	)

	return s.dispatch(ctx, order)
}

// dispatch runs the payment strategy for an already-persisted order and
// reconciles synchronous outcomes.
func (s *Service) dispatch(ctx context.Context, order *models.Order) (*CheckoutResponse, error) {
	orderID := order.ID.Hex()
	resp := &CheckoutResponse{
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		Pricing: models.PricingResult{
			Subtotal:       order.Subtotal,
			CouponDiscount: order.CouponDiscount,
			ShippingCost:   order.ShippingCost,
			Total:          order.Total,
		},
	}

	payResult, err := s.dispatcher.Dispatch(ctx, order.PaymentMethod, payment.Request{
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Customer:    order.Customer,
		Items:       order.Items,
	})
	if err != nil {
		// The order id is preserved in the response so support can reconcile
		// the attempt manually.
		s.log.Error("payment dispatch failed", "order_id", orderID, "error", err)
		resp.PaymentStatus = models.PaymentPending
		resp.OrderStatus = models.OrderPending
		return resp, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	if payResult.Pending {
		if err := s.orders.SetPaymentSession(ctx, orderID, payResult.SessionID); err != nil {
			return resp, fmt.Errorf("failed to store payment session: %w", err)
		}
		resp.PaymentStatus = models.PaymentPending
		resp.OrderStatus = models.OrderPending
		resp.RedirectURL = payResult.RedirectURL
		return resp, nil
	}

	if err := s.Reconcile(ctx, orderID, payResult); err != nil {
		return resp, err
	}

	updated, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return resp, err
	}
	resp.PaymentStatus = updated.PaymentStatus
	resp.OrderStatus = updated.OrderStatus
	resp.FailureNote = payResult.FailureNote
	return resp, nil
}

// Reconcile durably records a payment outcome against the order. It is safe
// to call more than once for the same order: the pending-status guard in the
// repository makes the success path a no-op after the first transition, so
// coupon usage is never double-incremented and the cart is cleared at most
// once.
func (s *Service) Reconcile(ctx context.Context, orderID string, result payment.Result) error {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if !result.Succeeded {
		transitioned, err := s.orders.MarkFailed(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to record payment failure: %w", err)
		}
		if !transitioned {
			// Duplicate failure callback, or the order already resolved.
			s.log.Info("order already reconciled", "order_id", orderID)
			return nil
		}
		s.log.Warn("payment failed",
			"order_id", orderID,
			"method", order.PaymentMethod,
			"amount", order.Total,
			"note", result.FailureNote,
		)
		// The cart is deliberately left intact so the user can retry.
		s.notify(func() error { return s.notifier.SendPaymentFailedEmail(*order) }, orderID)
		return nil
	}

	transitioned, err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}
	if !transitioned {
		// Already reconciled, e.g. a duplicate gateway callback.
		s.log.Info("order already reconciled", "order_id", orderID)
		return nil
	}

	if order.AppliedCoupon != "" {
		redeemed, err := s.coupons.RedeemOnce(ctx, order.AppliedCoupon)
		if err != nil {
			s.log.Error("failed to redeem coupon", "order_id", orderID, "coupon", order.AppliedCoupon, "error", err)
		} else if !redeemed {
			s.log.Warn("coupon usage limit hit between checkout and payment",
				"order_id", orderID, "coupon", order.AppliedCoupon)
		}
	}

	if order.CartOwnerID != "" {
		if err := s.carts.Clear(ctx, order.CartOwnerID); err != nil {
			s.log.Error("failed to clear cart", "order_id", orderID, "error", err)
		}
	}

	s.log.Info("order confirmed", "order_id", orderID, "order_number", order.OrderNumber, "total", order.Total)
	s.notify(func() error { return s.notifier.SendOrderConfirmationEmail(*order) }, orderID)
	return nil
}

// ConfirmHostedReturn handles the browser returning from a hosted checkout
// page. The client-supplied parameters are never trusted: the session must
// belong to the order and the gateway is asked for the authoritative payment
// state before any transition.
func (s *Service) ConfirmHostedReturn(ctx context.Context, orderID, sessionID string) (*models.Order, bool, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, err
	}

	if order.PaymentSessionID == "" || order.PaymentSessionID != sessionID {
		return nil, false, ErrSessionMismatch
	}

	paid, err := s.gateway.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	if !paid {
		// Leave the order pending; the user may still complete payment or the
		// expiry sweep will cancel it later. The cart stays intact.
		s.log.Info("hosted payment not completed", "order_id", orderID, "session_id", sessionID)
		return order, false, nil
	}

	if err := s.Reconcile(ctx, orderID, payment.Result{Succeeded: true, SessionID: sessionID}); err != nil {
		return nil, false, err
	}

	updated, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// Retry re-dispatches payment for an order whose previous attempt failed or
// was abandoned. It reuses the same order id so one checkout never produces
// duplicate order records. Retries are always explicit user actions.
func (s *Service) Retry(ctx context.Context, orderID string) (*CheckoutResponse, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.PaymentStatus == models.PaymentCompleted {
		return nil, ErrAlreadyPaid
	}

	if order.PaymentStatus == models.PaymentFailed {
		if _, err := s.orders.ResetPending(ctx, orderID); err != nil {
			return nil, fmt.Errorf("failed to reset order for retry: %w", err)
		}
		order.PaymentStatus = models.PaymentPending
	}

	s.log.Info("retrying payment", "order_id", orderID, "method", order.PaymentMethod)
	return s.dispatch(ctx, order)
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// OrdersForEmail lists orders placed with the given contact email, covering
// both registered and guest customers.
func (s *Service) OrdersForEmail(ctx context.Context, email string) ([]models.Order, error) {
	return s.orders.FindByEmail(ctx, email)
}

// UpdateStatus is the admin-driven fulfilment transition.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	err := s.orders.SetOrderStatus(ctx, orderID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *Service) nextOrderNumber() string {
	n := atomic.AddUint64(&s.seq, 1)
	return fmt.Sprintf("ORD-%s-%03d", s.now().Format("20060102"), n%1000)
}

// notify sends an email off the request path, matching how order mails were
// always fire-and-forget here.
func (s *Service) notify(send func() error, orderID string) {
	go func() {
		if err := send(); err != nil {
			s.log.Error("failed to send order email", "order_id", orderID, "error", err)
		}
	}()
}
