package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod identifies how the customer chose to pay.
type PaymentMethod string

const (
	PaymentCOD            PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
	PaymentUPI            PaymentMethod = "upi"
	PaymentNetBanking     PaymentMethod = "netbanking"
	PaymentHostedRedirect PaymentMethod = "hosted_redirect"
)

// PaymentStatus tracks the payment outcome for an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// OrderStatus tracks order fulfilment.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// CustomerInfo is the delivery snapshot captured at checkout. It is immutable
// once the order is created, even for registered users who later edit their
// profile.
type CustomerInfo struct {
	Name    string  `bson:"name" json:"name"`
	Email   string  `bson:"email" json:"email"`
	Phone   string  `bson:"phone" json:"phone"`
	Address Address `bson:"address" json:"address"`
}

// PricingResult holds the derived money figures for a cart. It is recomputed
// on every cart mutation and only persisted as part of an order snapshot.
type PricingResult struct {
	Subtotal       float64 `bson:"subtotal" json:"subtotal"`
	CouponDiscount float64 `bson:"coupon_discount" json:"coupon_discount"`
	ShippingCost   float64 `bson:"shipping_cost" json:"shipping_cost"`
	Total          float64 `bson:"total" json:"total"`
}

// Order represents a placed order. Items, customer info and pricing are an
// immutable snapshot of the cart at checkout time; only the status fields and
// payment session reference change afterwards, and only through the
// repository.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderNumber      string             `bson:"order_number" json:"order_number"` // display only, e.g. ORD-20260830-001
	UserID           string             `bson:"user_id,omitempty" json:"user_id,omitempty"` // empty for guest orders
	CartOwnerID      string             `bson:"cart_owner_id,omitempty" json:"-"`           // whose cart to clear on success
	Customer         CustomerInfo       `bson:"customer" json:"customer"`
	Items            []CartItem         `bson:"items" json:"items"`
	Subtotal         float64            `bson:"subtotal" json:"subtotal"`
	CouponDiscount   float64            `bson:"coupon_discount" json:"coupon_discount"`
	ShippingCost     float64            `bson:"shipping_cost" json:"shipping_cost"`
	Total            float64            `bson:"total" json:"total"`
	PaymentMethod    PaymentMethod      `bson:"payment_method" json:"payment_method"`
	PaymentStatus    PaymentStatus      `bson:"payment_status" json:"payment_status"`
	OrderStatus      OrderStatus        `bson:"order_status" json:"order_status"`
	AppliedCoupon    string             `bson:"applied_coupon,omitempty" json:"applied_coupon,omitempty"`
	PaymentSessionID string             `bson:"payment_session_id,omitempty" json:"payment_session_id,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidMethod reports whether m names a supported payment method.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentUPI, PaymentNetBanking, PaymentHostedRedirect:
		return true
	}
	return false
}
