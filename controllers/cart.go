package controllers

import (
	"context"
	"encoding/json"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/repository"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CartController handles cart-related requests. Carts are keyed by owner id:
// the authenticated user's email or the guest session header, so anonymous
// shoppers get the same behaviour.
type CartController struct {
	Carts             repository.CartRepository
	ProductCollection *mongo.Collection
}

// NewCartController creates a new CartController
func NewCartController(carts repository.CartRepository, db *mongo.Database) *CartController {
	return &CartController{
		Carts:             carts,
		ProductCollection: db.Collection("products"),
	}
}

// AddToCart adds a product to the cart, snapshotting its name and price.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r)
	if ownerID == "" {
		http.Error(w, "Missing guest session", http.StatusBadRequest)
		return
	}

	var input struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Quantity < 1 {
		http.Error(w, "Quantity must be at least 1", http.StatusBadRequest)
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Look up the product so the cart line carries a price snapshot.
	var product models.Product
	err = cc.ProductCollection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	item := models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  input.Quantity,
		ImageURL:  product.ImageURL,
	}

	cart, err := cc.Carts.Get(ctx, ownerID)
	if err != nil {
		cart = &models.Cart{OwnerID: ownerID}
	}

	// Merge with an existing line for the same product.
	updated := false
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			updated = true
			break
		}
	}
	if !updated {
		cart.Items = append(cart.Items, item)
	}

	if err := cc.Carts.Put(ctx, cart); err != nil {
		http.Error(w, "Error saving cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cart)
}

// GetCart retrieves the cart for the current owner.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r)
	if ownerID == "" {
		http.Error(w, "Missing guest session", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Carts.Get(ctx, ownerID)
	if err != nil {
		// An absent cart is just an empty one.
		cart = &models.Cart{OwnerID: ownerID, Items: []models.CartItem{}}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cart)
}

// RemoveFromCart removes a product line, or the whole cart when no product is
// given.
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r)
	if ownerID == "" {
		http.Error(w, "Missing guest session", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	productHex := r.URL.Query().Get("product_id")
	if productHex == "" {
		if err := cc.Carts.Clear(ctx, ownerID); err != nil {
			http.Error(w, "Error clearing cart", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode("Cart cleared")
		return
	}

	productID, err := primitive.ObjectIDFromHex(productHex)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	cart, err := cc.Carts.Get(ctx, ownerID)
	if err != nil {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}

	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}

	if err := cc.Carts.Put(ctx, cart); err != nil {
		http.Error(w, "Error saving cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cart)
}
