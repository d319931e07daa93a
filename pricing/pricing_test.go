package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 { return &f }

func testCoupons() []models.Coupon {
	return []models.Coupon{
		{
			Code:          "SAVE10",
			DiscountType:  models.DiscountPercentage,
			Value:         10,
			MinOrderValue: 999,
			MaxDiscount:   floatPtr(100),
			UsageLimit:    50,
			UsedCount:     3,
			ValidFrom:     now.Add(-24 * time.Hour),
			ValidTo:       now.Add(24 * time.Hour),
			IsActive:      true,
		},
		{
			Code:          "FLAT200",
			DiscountType:  models.DiscountFixed,
			Value:         200,
			MinOrderValue: 0,
			UsageLimit:    10,
			UsedCount:     0,
			ValidFrom:     now.Add(-24 * time.Hour),
			ValidTo:       now.Add(24 * time.Hour),
			IsActive:      true,
		},
		{
			Code:          "EXPIRED50",
			DiscountType:  models.DiscountFixed,
			Value:         50,
			UsageLimit:    10,
			ValidFrom:     now.Add(-48 * time.Hour),
			ValidTo:       now.Add(-24 * time.Hour),
			IsActive:      true,
		},
		{
			Code:          "SLEEPY",
			DiscountType:  models.DiscountFixed,
			Value:         50,
			UsageLimit:    10,
			ValidFrom:     now.Add(24 * time.Hour),
			ValidTo:       now.Add(48 * time.Hour),
			IsActive:      true,
		},
		{
			Code:          "DISABLED",
			DiscountType:  models.DiscountFixed,
			Value:         50,
			UsageLimit:    10,
			ValidFrom:     now.Add(-24 * time.Hour),
			ValidTo:       now.Add(24 * time.Hour),
			IsActive:      false,
		},
		{
			Code:          "ALLUSED",
			DiscountType:  models.DiscountFixed,
			Value:         50,
			UsageLimit:    5,
			UsedCount:     5,
			ValidFrom:     now.Add(-24 * time.Hour),
			ValidTo:       now.Add(24 * time.Hour),
			IsActive:      true,
		},
	}
}

func TestValidateCoupon(t *testing.T) {
	coupons := testCoupons()

	tests := []struct {
		name         string
		code         string
		subtotal     float64
		wantValid    bool
		wantDiscount float64
		wantReason   string
	}{
		{
			name:         "percentage coupon clamped to max discount",
			code:         "SAVE10",
			subtotal:     1200,
			wantValid:    true,
			wantDiscount: 100, // 10% of 1200 = 120, clamped to 100
		},
		{
			name:         "percentage coupon below max discount",
			code:         "SAVE10",
			subtotal:     999,
			wantValid:    true,
			wantDiscount: 99.9,
		},
		{
			name:         "case-insensitive code match",
			code:         "save10",
			subtotal:     1200,
			wantValid:    true,
			wantDiscount: 100,
		},
		{
			name:         "fixed coupon",
			code:         "FLAT200",
			subtotal:     500,
			wantValid:    true,
			wantDiscount: 200,
		},
		{
			name:         "fixed discount clamped to subtotal",
			code:         "FLAT200",
			subtotal:     150,
			wantValid:    true,
			wantDiscount: 150,
		},
		{
			name:       "unknown code",
			code:       "NOSUCH",
			subtotal:   1200,
			wantReason: "invalid coupon code",
		},
		{
			name:       "inactive coupon",
			code:       "DISABLED",
			subtotal:   1200,
			wantReason: "coupon is inactive",
		},
		{
			name:       "not yet active",
			code:       "SLEEPY",
			subtotal:   1200,
			wantReason: "coupon is not yet active",
		},
		{
			name:       "expired coupon",
			code:       "EXPIRED50",
			subtotal:   1200,
			wantReason: "coupon has expired",
		},
		{
			name:       "usage limit reached",
			code:       "ALLUSED",
			subtotal:   1200,
			wantReason: "coupon usage limit reached",
		},
		{
			name:       "below minimum order value",
			code:       "SAVE10",
			subtotal:   500,
			wantReason: "minimum order value of 999.00 not met",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCoupon(tt.code, tt.subtotal, coupons, now)
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantDiscount, result.Discount)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, result.Reason)
			}
			if tt.wantValid {
				require.NotNil(t, result.Coupon)
				assert.LessOrEqual(t, result.Discount, tt.subtotal)
			} else {
				assert.Zero(t, result.Discount)
			}
		})
	}
}

func TestValidateCouponIsIdempotent(t *testing.T) {
	coupons := testCoupons()
	first := ValidateCoupon("SAVE10", 1200, coupons, now)
	second := ValidateCoupon("SAVE10", 1200, coupons, now)
	assert.Equal(t, first, second)
}

func TestValidateCouponUsageIsMonotonic(t *testing.T) {
	coupon := models.Coupon{
		Code:         "LIMITED",
		DiscountType: models.DiscountFixed,
		Value:        10,
		UsageLimit:   3,
		UsedCount:    3,
		ValidFrom:    now.Add(-time.Hour),
		ValidTo:      now.Add(time.Hour),
		IsActive:     true,
	}

	// Once the limit is hit, every further validation reports it.
	for i := 0; i < 5; i++ {
		result := ValidateCoupon("LIMITED", 1000, []models.Coupon{coupon}, now)
		assert.False(t, result.Valid)
		assert.Equal(t, "coupon usage limit reached", result.Reason)
	}
}

func TestComputeShipping(t *testing.T) {
	engine := NewEngine(50, 999)

	assert.Equal(t, 50.0, engine.ComputeShipping(0))
	assert.Equal(t, 50.0, engine.ComputeShipping(500))
	assert.Equal(t, 50.0, engine.ComputeShipping(999))
	assert.Equal(t, 0.0, engine.ComputeShipping(999.01))
	assert.Equal(t, 0.0, engine.ComputeShipping(5000))
}

func TestComputeTotals(t *testing.T) {
	engine := NewEngine(50, 999)
	coupons := testCoupons()

	t.Run("discounted cart above free shipping threshold", func(t *testing.T) {
		// Subtotal 1200 with SAVE10: 10% = 120 clamped to 100, discounted
		// subtotal 1100 ships free, total 1100.
		items := []models.CartItem{
			{Name: "Headphones", UnitPrice: 600, Quantity: 2},
		}
		result, validation, err := engine.ComputeTotals(items, coupons, "SAVE10", now)
		require.NoError(t, err)
		assert.True(t, validation.Valid)
		assert.Equal(t, 1200.0, result.Subtotal)
		assert.Equal(t, 100.0, result.CouponDiscount)
		assert.Equal(t, 0.0, result.ShippingCost)
		assert.Equal(t, 1100.0, result.Total)
	})

	t.Run("small cart without coupon pays flat shipping", func(t *testing.T) {
		items := []models.CartItem{
			{Name: "Mug", UnitPrice: 250, Quantity: 2},
		}
		result, validation, err := engine.ComputeTotals(items, coupons, "", now)
		require.NoError(t, err)
		assert.False(t, validation.Valid)
		assert.Equal(t, 500.0, result.Subtotal)
		assert.Equal(t, 0.0, result.CouponDiscount)
		assert.Equal(t, 50.0, result.ShippingCost)
		assert.Equal(t, 550.0, result.Total)
	})

	t.Run("expired coupon prices cart without discount", func(t *testing.T) {
		items := []models.CartItem{
			{Name: "Lamp", UnitPrice: 1200, Quantity: 1},
		}
		result, validation, err := engine.ComputeTotals(items, coupons, "EXPIRED50", now)
		require.NoError(t, err)
		assert.False(t, validation.Valid)
		assert.Contains(t, validation.Reason, "expired")
		assert.Equal(t, 0.0, result.CouponDiscount)
		assert.Equal(t, 1200.0, result.Total)
	})

	t.Run("coupon re-validated when cart shrinks below minimum", func(t *testing.T) {
		items := []models.CartItem{
			{Name: "Mug", UnitPrice: 250, Quantity: 2},
		}
		_, validation, err := engine.ComputeTotals(items, coupons, "SAVE10", now)
		require.NoError(t, err)
		assert.False(t, validation.Valid)
		assert.Equal(t, "minimum order value of 999.00 not met", validation.Reason)
	})

	t.Run("total never goes negative", func(t *testing.T) {
		items := []models.CartItem{
			{Name: "Sticker", UnitPrice: 20, Quantity: 1},
		}
		result, validation, err := engine.ComputeTotals(items, coupons, "FLAT200", now)
		require.NoError(t, err)
		assert.True(t, validation.Valid)
		assert.Equal(t, 20.0, result.CouponDiscount)
		assert.GreaterOrEqual(t, result.Total, 0.0)
		assert.Equal(t, 50.0, result.Total) // 20 - 20 + 50 shipping
	})

	t.Run("empty cart", func(t *testing.T) {
		result, _, err := engine.ComputeTotals(nil, coupons, "", now)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Subtotal)
		assert.Equal(t, 50.0, result.Total) // flat shipping only
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		items := []models.CartItem{{Name: "Mug", UnitPrice: 100, Quantity: 0}}
		_, _, err := engine.ComputeTotals(items, coupons, "", now)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		items := []models.CartItem{{Name: "Mug", UnitPrice: -5, Quantity: 1}}
		_, _, err := engine.ComputeTotals(items, coupons, "", now)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})
}
