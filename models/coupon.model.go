package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountType distinguishes percentage coupons from fixed-amount coupons.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is an admin-defined discount rule keyed by a code, bounded by a
// validity window and a usage count.
type Coupon struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code          string             `bson:"code" json:"code"` // matched case-insensitively
	DiscountType  DiscountType       `bson:"discount_type" json:"discount_type"`
	Value         float64            `bson:"value" json:"value"`
	MinOrderValue float64            `bson:"min_order_value" json:"min_order_value"`
	MaxDiscount   *float64           `bson:"max_discount,omitempty" json:"max_discount,omitempty"` // percentage coupons only
	UsageLimit    int                `bson:"usage_limit" json:"usage_limit"`
	UsedCount     int                `bson:"used_count" json:"used_count"`
	ValidFrom     time.Time          `bson:"valid_from" json:"valid_from"`
	ValidTo       time.Time          `bson:"valid_to" json:"valid_to"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// CouponValidation is the outcome of checking a code against a cart subtotal.
// Business-rule failures are reported here, never as errors.
type CouponValidation struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Reason   string  `json:"reason,omitempty"`
	Coupon   *Coupon `json:"coupon,omitempty"`
}
