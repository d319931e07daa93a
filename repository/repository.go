package repository

import (
	"context"
	"errors"
	"time"

	"go-storefront/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// OrderRepository is the persistence boundary for orders. The store is the
// single source of truth for payment and order status; callers never mutate
// status fields directly on a loaded Order.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) (string, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)

	// MarkPaid transitions the order to completed/confirmed, but only if its
	// payment status is still pending. It reports whether the transition
	// happened, which lets reconciliation stay idempotent under duplicate
	// callback delivery.
	MarkPaid(ctx context.Context, orderID string) (bool, error)

	// MarkFailed records a failed payment attempt, but only while the order is
	// still pending. It reports whether the transition happened so duplicate
	// failure callbacks stay no-ops. The order stays retryable.
	MarkFailed(ctx context.Context, orderID string) (bool, error)

	// ResetPending moves a failed order back to pending ahead of a
	// user-initiated retry. It reports whether the transition happened; a
	// completed order is never reset.
	ResetPending(ctx context.Context, orderID string) (bool, error)

	// SetPaymentSession stores the gateway session reference on a pending order.
	SetPaymentSession(ctx context.Context, orderID, sessionID string) error

	// SetOrderStatus is the admin-driven fulfilment transition (shipped,
	// completed, cancelled).
	SetOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error

	FindByEmail(ctx context.Context, email string) ([]models.Order, error)
	FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)

	// FindPendingBefore returns hosted-redirect orders still awaiting payment
	// that were created before the cutoff. Used by the expiry sweep.
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)

	// ExpirePending cancels a pending order; it is a no-op (false) if payment
	// completed in the meantime.
	ExpirePending(ctx context.Context, orderID string) (bool, error)
}

// CouponRepository is the persistence boundary for coupons.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) (string, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, couponID string) error

	// RedeemOnce atomically increments the coupon's used count, but only while
	// it is below the usage limit. It reports whether the redemption was
	// applied. Two concurrent redemptions of the last remaining use can never
	// both succeed.
	RedeemOnce(ctx context.Context, code string) (bool, error)
}

// CartRepository is the persistence boundary for carts, keyed by owner
// (user id or guest session id).
type CartRepository interface {
	Get(ctx context.Context, ownerID string) (*models.Cart, error)
	Put(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, ownerID string) error
}

// SettingsRepository stores the single site-settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Put(ctx context.Context, settings *models.SiteSettings) error
}
