package payment

import (
	"context"

	"go-storefront/models"
)

// CODStrategy models cash on delivery. Payment is collected at the door, so
// the checkout-time attempt always succeeds immediately.
type CODStrategy struct{}

// NewCODStrategy creates the cash-on-delivery strategy.
func NewCODStrategy() *CODStrategy { return &CODStrategy{} }

func (s *CODStrategy) Method() models.PaymentMethod { return models.PaymentCOD }

func (s *CODStrategy) Pay(_ context.Context, _ Request) (Result, error) {
	return Result{Succeeded: true}, nil
}

// Charger is the gateway operation behind the synchronous card, UPI and
// net-banking strategies. A declined charge is ok=false with a note; errors
// are transport failures only.
type Charger interface {
	Charge(ctx context.Context, method models.PaymentMethod, req Request) (ok bool, note string, err error)
}

// ChargeStrategy is a synchronous gateway-backed payment method.
type ChargeStrategy struct {
	method  models.PaymentMethod
	charger Charger
}

// NewChargeStrategy creates a synchronous strategy for the given method.
func NewChargeStrategy(method models.PaymentMethod, charger Charger) *ChargeStrategy {
	return &ChargeStrategy{method: method, charger: charger}
}

func (s *ChargeStrategy) Method() models.PaymentMethod { return s.method }

func (s *ChargeStrategy) Pay(ctx context.Context, req Request) (Result, error) {
	ok, note, err := s.charger.Charge(ctx, s.method, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Succeeded: ok, FailureNote: note}, nil
}
