package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go-storefront/models"
)

// Malformed-input errors. Business-rule failures (bad coupon, below minimum)
// are never errors; they are reported through models.CouponValidation.
var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("unit price must be a non-negative finite number")
)

// Engine computes cart totals. It is pure: no I/O, no shared mutable state,
// safe to call concurrently.
type Engine struct {
	ShippingFlatRate      float64
	FreeShippingThreshold float64
}

// NewEngine creates a pricing engine with the given shipping policy.
func NewEngine(flatRate, freeThreshold float64) *Engine {
	return &Engine{
		ShippingFlatRate:      flatRate,
		FreeShippingThreshold: freeThreshold,
	}
}

// ValidateCoupon checks a code against the coupon collection for the given
// pre-discount subtotal. Checks run in a fixed order and the first failure
// wins. The returned discount is already clamped so it can never exceed the
// subtotal.
func ValidateCoupon(code string, orderSubtotal float64, coupons []models.Coupon, now time.Time) models.CouponValidation {
	var coupon *models.Coupon
	for i := range coupons {
		if strings.EqualFold(coupons[i].Code, code) {
			coupon = &coupons[i]
			break
		}
	}

	if coupon == nil {
		return models.CouponValidation{Reason: "invalid coupon code"}
	}

	if !coupon.IsActive {
		return models.CouponValidation{Reason: "coupon is inactive"}
	}

	if now.Before(coupon.ValidFrom) {
		return models.CouponValidation{Reason: "coupon is not yet active"}
	}

	if now.After(coupon.ValidTo) {
		return models.CouponValidation{Reason: "coupon has expired"}
	}

	if coupon.UsedCount >= coupon.UsageLimit {
		return models.CouponValidation{Reason: "coupon usage limit reached"}
	}

	if orderSubtotal < coupon.MinOrderValue {
		return models.CouponValidation{
			Reason: fmt.Sprintf("minimum order value of %.2f not met", coupon.MinOrderValue),
		}
	}

	discount := 0.0
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discount = orderSubtotal * coupon.Value / 100
		if coupon.MaxDiscount != nil && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
	case models.DiscountFixed:
		discount = coupon.Value
	}

	// Discount can never exceed the subtotal, so totals stay non-negative.
	if discount > orderSubtotal {
		discount = orderSubtotal
	}

	return models.CouponValidation{
		Valid:    true,
		Discount: discount,
		Coupon:   coupon,
	}
}

// ComputeShipping returns the shipping cost for the discounted subtotal: a
// flat rate at or below the free-shipping threshold, free above it.
func (e *Engine) ComputeShipping(subtotalAfterDiscount float64) float64 {
	if subtotalAfterDiscount <= e.FreeShippingThreshold {
		return e.ShippingFlatRate
	}
	return 0
}

// ComputeTotals prices a cart, re-validating the coupon code (if any) against
// the current contents. A previously valid coupon can become invalid when the
// cart shrinks below its minimum order value; in that case the result carries
// no discount and the validation explains why. Only malformed input produces
// an error.
func (e *Engine) ComputeTotals(items []models.CartItem, coupons []models.Coupon, couponCode string, now time.Time) (models.PricingResult, models.CouponValidation, error) {
	subtotal := 0.0
	for _, item := range items {
		if item.Quantity < 1 {
			return models.PricingResult{}, models.CouponValidation{}, ErrInvalidQuantity
		}
		if item.UnitPrice < 0 || math.IsNaN(item.UnitPrice) || math.IsInf(item.UnitPrice, 0) {
			return models.PricingResult{}, models.CouponValidation{}, ErrInvalidPrice
		}
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	validation := models.CouponValidation{}
	if couponCode != "" {
		validation = ValidateCoupon(couponCode, subtotal, coupons, now)
	}

	shipping := e.ComputeShipping(subtotal - validation.Discount)

	total := subtotal - validation.Discount + shipping
	if total < 0 {
		total = 0
	}

	return models.PricingResult{
		Subtotal:       subtotal,
		CouponDiscount: validation.Discount,
		ShippingCost:   shipping,
		Total:          total,
	}, validation, nil
}
