package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
)

// In-memory repository implementations. They satisfy the same interfaces as
// the Mongo ones, including the conditional-update semantics, and back the
// orchestrator tests.

// InMemoryOrderRepository stores orders in a map guarded by a mutex.
type InMemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

// NewInMemoryOrderRepository creates an empty in-memory order repository.
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{orders: make(map[string]*models.Order)}
}

func (r *InMemoryOrderRepository) Insert(_ context.Context, order *models.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = primitive.NewObjectID()
	copied := *order
	r.orders[order.ID.Hex()] = &copied
	return order.ID.Hex(), nil
}

func (r *InMemoryOrderRepository) Get(_ context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *InMemoryOrderRepository) MarkPaid(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if order.PaymentStatus != models.PaymentPending {
		return false, nil
	}
	order.PaymentStatus = models.PaymentCompleted
	order.OrderStatus = models.OrderConfirmed
	order.UpdatedAt = time.Now()
	return true, nil
}

func (r *InMemoryOrderRepository) MarkFailed(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if order.PaymentStatus != models.PaymentPending {
		return false, nil
	}
	order.PaymentStatus = models.PaymentFailed
	order.UpdatedAt = time.Now()
	return true, nil
}

func (r *InMemoryOrderRepository) ResetPending(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if order.PaymentStatus != models.PaymentFailed {
		return false, nil
	}
	order.PaymentStatus = models.PaymentPending
	order.UpdatedAt = time.Now()
	return true, nil
}

func (r *InMemoryOrderRepository) SetPaymentSession(_ context.Context, orderID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.PaymentSessionID = sessionID
	order.PaymentStatus = models.PaymentPending
	order.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryOrderRepository) SetOrderStatus(_ context.Context, orderID string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.OrderStatus = status
	order.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryOrderRepository) FindByEmail(_ context.Context, email string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders []models.Order
	for _, order := range r.orders {
		if strings.EqualFold(order.Customer.Email, email) {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *InMemoryOrderRepository) FindByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.OrderStatus == status {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *InMemoryOrderRepository) FindPendingBefore(_ context.Context, cutoff time.Time) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.PaymentStatus == models.PaymentPending &&
			order.PaymentMethod == models.PaymentHostedRedirect &&
			order.CreatedAt.Before(cutoff) {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *InMemoryOrderRepository) ExpirePending(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if order.PaymentStatus != models.PaymentPending {
		return false, nil
	}
	order.PaymentStatus = models.PaymentFailed
	order.OrderStatus = models.OrderCancelled
	order.UpdatedAt = time.Now()
	return true, nil
}

// Backdate rewrites an order's creation time. Test support for exercising
// the expiry sweep.
func (r *InMemoryOrderRepository) Backdate(orderID string, createdAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.CreatedAt = createdAt
	return nil
}

// InMemoryCouponRepository stores coupons in a slice guarded by a mutex.
type InMemoryCouponRepository struct {
	mu      sync.Mutex
	coupons []models.Coupon
}

// NewInMemoryCouponRepository creates a coupon repository seeded with the
// given coupons.
func NewInMemoryCouponRepository(coupons ...models.Coupon) *InMemoryCouponRepository {
	repo := &InMemoryCouponRepository{}
	for _, c := range coupons {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		repo.coupons = append(repo.coupons, c)
	}
	return repo
}

func (r *InMemoryCouponRepository) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.coupons {
		if strings.EqualFold(r.coupons[i].Code, code) {
			copied := r.coupons[i]
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryCouponRepository) List(_ context.Context) ([]models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupons := make([]models.Coupon, len(r.coupons))
	copy(coupons, r.coupons)
	return coupons, nil
}

func (r *InMemoryCouponRepository) Create(_ context.Context, coupon *models.Coupon) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon.ID = primitive.NewObjectID()
	coupon.CreatedAt = time.Now()
	coupon.UpdatedAt = coupon.CreatedAt
	r.coupons = append(r.coupons, *coupon)
	return coupon.ID.Hex(), nil
}

func (r *InMemoryCouponRepository) Update(_ context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.coupons {
		if r.coupons[i].ID == coupon.ID {
			coupon.UpdatedAt = time.Now()
			r.coupons[i] = *coupon
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryCouponRepository) Delete(_ context.Context, couponID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.coupons {
		if r.coupons[i].ID.Hex() == couponID {
			r.coupons = append(r.coupons[:i], r.coupons[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryCouponRepository) RedeemOnce(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.coupons {
		if strings.EqualFold(r.coupons[i].Code, code) {
			if r.coupons[i].UsedCount >= r.coupons[i].UsageLimit {
				return false, nil
			}
			r.coupons[i].UsedCount++
			r.coupons[i].UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, ErrNotFound
}

// InMemoryCartRepository stores carts keyed by owner id.
type InMemoryCartRepository struct {
	mu    sync.Mutex
	carts map[string]models.Cart
}

// NewInMemoryCartRepository creates an empty in-memory cart repository.
func NewInMemoryCartRepository() *InMemoryCartRepository {
	return &InMemoryCartRepository{carts: make(map[string]models.Cart)}
}

func (r *InMemoryCartRepository) Get(_ context.Context, ownerID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &cart, nil
}

func (r *InMemoryCartRepository) Put(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.OwnerID] = *cart
	return nil
}

func (r *InMemoryCartRepository) Clear(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, ownerID)
	return nil
}

// InMemorySettingsRepository stores a single settings document.
type InMemorySettingsRepository struct {
	mu       sync.Mutex
	settings *models.SiteSettings
}

// NewInMemorySettingsRepository creates an empty in-memory settings repository.
func NewInMemorySettingsRepository() *InMemorySettingsRepository {
	return &InMemorySettingsRepository{}
}

func (r *InMemorySettingsRepository) Get(_ context.Context) (*models.SiteSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings == nil {
		return nil, ErrNotFound
	}
	copied := *r.settings
	return &copied, nil
}

func (r *InMemorySettingsRepository) Put(_ context.Context, settings *models.SiteSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings.UpdatedAt = time.Now()
	copied := *settings
	r.settings = &copied
	return nil
}
