package payment

import (
	"context"
	"errors"

	"go-storefront/models"
)

var (
	// ErrUnsupportedMethod is returned when no strategy is registered for the
	// requested payment method.
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// Request carries everything a strategy needs to attempt a payment. OrderID
// doubles as the idempotency key towards the gateway.
type Request struct {
	OrderID     string
	OrderNumber string
	Amount      float64
	Customer    models.CustomerInfo
	Items       []models.CartItem
}

// Result is the outcome of a payment attempt. For hosted-redirect payments
// the outcome is not known in-process: Pending is true, RedirectURL points at
// the external checkout page and SessionID identifies the gateway session to
// verify later.
type Result struct {
	Succeeded   bool
	Pending     bool
	RedirectURL string
	SessionID   string
	FailureNote string
}

// Strategy is a single payment method implementation. Pay either resolves
// synchronously or, for hosted flows, hands back a redirect. Errors are
// reserved for transport failures (gateway unreachable, timeout); a declined
// payment is a non-error Result with Succeeded=false.
type Strategy interface {
	Method() models.PaymentMethod
	Pay(ctx context.Context, req Request) (Result, error)
}

// Dispatcher routes a payment request to the strategy registered for its
// method.
type Dispatcher struct {
	strategies map[models.PaymentMethod]Strategy
}

// NewDispatcher creates a dispatcher over the given strategies.
func NewDispatcher(strategies ...Strategy) *Dispatcher {
	d := &Dispatcher{strategies: make(map[models.PaymentMethod]Strategy)}
	for _, s := range strategies {
		d.strategies[s.Method()] = s
	}
	return d
}

// Dispatch runs the strategy for the given method.
func (d *Dispatcher) Dispatch(ctx context.Context, method models.PaymentMethod, req Request) (Result, error) {
	strategy, ok := d.strategies[method]
	if !ok {
		return Result{}, ErrUnsupportedMethod
	}
	return strategy.Pay(ctx, req)
}

// Supports reports whether a strategy is registered for the method.
func (d *Dispatcher) Supports(method models.PaymentMethod) bool {
	_, ok := d.strategies[method]
	return ok
}
