// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/orders"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// OrderController handles order tracking and the admin-driven fulfilment
// transitions. Placing orders is the checkout controller's job.
type OrderController struct {
	Service *orders.Service
}

// NewOrderController creates a new OrderController
func NewOrderController(service *orders.Service) *OrderController {
	return &OrderController{Service: service}
}

// GetOrders retrieves orders for the authenticated user, or for the email
// given in the query for guest order tracking.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	email := ""
	if claims, ok := middleware.ClaimsFrom(r); ok {
		email = claims.Email
	} else {
		email = r.URL.Query().Get("email")
	}
	if email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := oc.Service.OrdersForEmail(ctx, email)
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GetOrder retrieves a single order by id.
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Service.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// UpdateOrderStatus allows admin to move an order through fulfilment
// (confirmed, shipped, completed, cancelled). Payment status is never set
// here; it only changes through reconciliation.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var statusUpdate struct {
		OrderStatus models.OrderStatus `json:"order_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusUpdate); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch statusUpdate.OrderStatus {
	case models.OrderConfirmed, models.OrderShipped, models.OrderCompleted, models.OrderCancelled:
	default:
		http.Error(w, "Invalid order status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := oc.Service.UpdateStatus(ctx, orderID, statusUpdate.OrderStatus); err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update order status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Order status updated successfully"})
}
