package orders

import (
	"context"
	"log/slog"
	"time"

	"go-storefront/payment"
	"go-storefront/repository"
)

// Sweeper expires hosted-redirect orders whose payment was abandoned. An
// abandoned session would otherwise sit pending forever: the customer closed
// the tab and no callback is coming.
type Sweeper struct {
	orders   repository.OrderRepository
	gateway  payment.Gateway
	service  *Service
	ttl      time.Duration
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper creates a sweeper that cancels pending hosted-redirect orders
// older than ttl, checking every interval.
func NewSweeper(orders repository.OrderRepository, gateway payment.Gateway, service *Service, ttl, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		orders:   orders,
		gateway:  gateway,
		service:  service,
		ttl:      ttl,
		interval: interval,
		log:      log,
	}
}

// Run loops until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce processes all expired pending orders. Before cancelling, each
// session is verified against the gateway one last time: a payment that
// completed without us seeing the return redirect is reconciled as a success
// rather than thrown away.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.ttl)
	stale, err := s.orders.FindPendingBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("expiry sweep query failed", "error", err)
		return
	}

	for _, order := range stale {
		orderID := order.ID.Hex()

		if order.PaymentSessionID != "" {
			paid, err := s.gateway.VerifySession(ctx, order.PaymentSessionID)
			if err != nil {
				// Gateway unreachable: leave the order for the next sweep.
				s.log.Warn("could not verify stale session", "order_id", orderID, "error", err)
				continue
			}
			if paid {
				s.log.Info("stale order turned out paid, reconciling", "order_id", orderID)
				if err := s.service.Reconcile(ctx, orderID, payment.Result{Succeeded: true, SessionID: order.PaymentSessionID}); err != nil {
					s.log.Error("failed to reconcile stale paid order", "order_id", orderID, "error", err)
				}
				continue
			}
		}

		expired, err := s.orders.ExpirePending(ctx, orderID)
		if err != nil {
			s.log.Error("failed to expire order", "order_id", orderID, "error", err)
			continue
		}
		if expired {
			s.log.Info("expired abandoned order", "order_id", orderID, "order_number", order.OrderNumber)
		}
	}
}
