package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/repository"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponController handles the admin coupon CRUD and the public coupon
// preview used by the cart page.
type CouponController struct {
	Coupons repository.CouponRepository
}

// NewCouponController creates a new CouponController
func NewCouponController(coupons repository.CouponRepository) *CouponController {
	return &CouponController{Coupons: coupons}
}

func validateCouponInput(c *models.Coupon) string {
	if c.Code == "" {
		return "Code is required"
	}
	if c.DiscountType != models.DiscountPercentage && c.DiscountType != models.DiscountFixed {
		return "Discount type must be percentage or fixed"
	}
	if c.Value <= 0 {
		return "Value must be positive"
	}
	if c.MinOrderValue < 0 {
		return "Minimum order value must not be negative"
	}
	if c.UsageLimit <= 0 {
		return "Usage limit must be positive"
	}
	if !c.ValidFrom.Before(c.ValidTo) {
		return "Validity window start must be before its end"
	}
	if c.MaxDiscount != nil && c.DiscountType != models.DiscountPercentage {
		return "Max discount only applies to percentage coupons"
	}
	return ""
}

// CreateCoupon handles adding a new coupon (Admin only)
func (cc *CouponController) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var coupon models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if msg := validateCouponInput(&coupon); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Coupon codes are unique case-insensitively.
	if _, err := cc.Coupons.GetByCode(ctx, coupon.Code); err == nil {
		http.Error(w, "Coupon code already exists", http.StatusConflict)
		return
	}

	coupon.UsedCount = 0
	id, err := cc.Coupons.Create(ctx, &coupon)
	if err != nil {
		http.Error(w, "Error creating coupon", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// GetCoupons retrieves all coupons (Admin only)
func (cc *CouponController) GetCoupons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	coupons, err := cc.Coupons.List(ctx)
	if err != nil {
		http.Error(w, "Failed to retrieve coupons", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(coupons)
}

// UpdateCoupon handles editing a coupon (Admin only). The used count is
// preserved; it only moves through redemption.
func (cc *CouponController) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid coupon ID", http.StatusBadRequest)
		return
	}

	var coupon models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if msg := validateCouponInput(&coupon); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	existing, err := cc.Coupons.GetByCode(ctx, coupon.Code)
	if err == nil && existing.ID != couponID {
		http.Error(w, "Coupon code already exists", http.StatusConflict)
		return
	}

	coupon.ID = couponID
	if existing != nil && existing.ID == couponID {
		coupon.UsedCount = existing.UsedCount
		coupon.CreatedAt = existing.CreatedAt
	}

	if err := cc.Coupons.Update(ctx, &coupon); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Coupon not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error updating coupon", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(coupon)
}

// DeleteCoupon handles removing a coupon (Admin only)
func (cc *CouponController) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	couponID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := cc.Coupons.Delete(ctx, couponID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Coupon not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error deleting coupon", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Coupon deleted")
}

// PreviewCoupon checks a code against a subtotal without redeeming anything.
// The cart page uses it to show the would-be discount.
func (cc *CouponController) PreviewCoupon(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	subtotal, err := strconv.ParseFloat(r.URL.Query().Get("subtotal"), 64)
	if err != nil || subtotal < 0 {
		http.Error(w, "Invalid subtotal", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	coupons, err := cc.Coupons.List(ctx)
	if err != nil {
		http.Error(w, "Failed to retrieve coupons", http.StatusInternalServerError)
		return
	}

	validation := pricing.ValidateCoupon(code, subtotal, coupons, time.Now())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(validation)
}
