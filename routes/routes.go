// routes/routes.go
package routes

import (
	"go-storefront/controllers"
	"go-storefront/middleware"

	"github.com/gorilla/mux"
)

// Controllers bundles everything the router needs.
type Controllers struct {
	User     *controllers.UserController
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Order    *controllers.OrderController
	Coupon   *controllers.CouponController
	Settings *controllers.SettingsController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	// Public routes
	router.HandleFunc("/register", c.User.Register).Methods("POST")
	router.HandleFunc("/login", c.User.Login).Methods("POST")
	router.HandleFunc("/verify", c.User.VerifyEmail).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/profile").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("", c.User.GetProfile).Methods("GET")

	// Product routes
	router.HandleFunc("/products", c.Product.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods("GET")

	// Site settings, readable by the storefront
	router.HandleFunc("/settings", c.Settings.GetSettings).Methods("GET")

	// Coupon preview for the cart page
	router.HandleFunc("/coupons/{code}/preview", c.Coupon.PreviewCoupon).Methods("GET")

	// Cart and checkout work for guests and signed-in users alike
	shop := router.PathPrefix("/").Subrouter()
	shop.Use(middleware.OptionalAuthMiddleware)
	shop.HandleFunc("/cart", c.Cart.AddToCart).Methods("POST")
	shop.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
	shop.HandleFunc("/cart", c.Cart.RemoveFromCart).Methods("DELETE")
	shop.HandleFunc("/checkout/quote", c.Checkout.Quote).Methods("GET")
	shop.HandleFunc("/checkout", c.Checkout.Checkout).Methods("POST")
	shop.HandleFunc("/orders", c.Order.GetOrders).Methods("GET")
	shop.HandleFunc("/orders/{id}", c.Order.GetOrder).Methods("GET")
	shop.HandleFunc("/orders/{id}/retry", c.Checkout.RetryPayment).Methods("POST")

	// Hosted-checkout return URL; outcome is verified server-side
	router.HandleFunc("/payment/return", c.Checkout.PaymentReturn).Methods("GET")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/products", c.Product.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", c.Product.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", c.Product.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/coupons", c.Coupon.GetCoupons).Methods("GET")
	admin.HandleFunc("/coupons", c.Coupon.CreateCoupon).Methods("POST")
	admin.HandleFunc("/coupons/{id}", c.Coupon.UpdateCoupon).Methods("PUT")
	admin.HandleFunc("/coupons/{id}", c.Coupon.DeleteCoupon).Methods("DELETE")
	admin.HandleFunc("/settings", c.Settings.UpdateSettings).Methods("PUT")
	admin.HandleFunc("/orders/{id}/status", c.Order.UpdateOrderStatus).Methods("PUT")
}
