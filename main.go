// main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/models"
	"go-storefront/orders"
	"go-storefront/payment"
	"go-storefront/pricing"
	"go-storefront/repository"
	"go-storefront/routes"
	"go-storefront/utils"
)

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB(cfg.Mongo.URI)
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Error("failed to disconnect from MongoDB", "error", err)
		}
	}()
	db := client.Database(cfg.Mongo.Database)

	// Repositories
	orderRepo := repository.NewMongoOrderRepository(db)
	couponRepo := repository.NewMongoCouponRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)
	settingsRepo := repository.NewMongoSettingsRepository(db)

	// Pricing engine and payment strategies
	engine := pricing.NewEngine(cfg.Checkout.ShippingFlatRate, cfg.Checkout.FreeShippingThreshold)
	gateway := payment.NewGatewayClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, time.Duration(cfg.Gateway.HTTPTimeout)*time.Second)
	dispatcher := payment.NewDispatcher(
		payment.NewCODStrategy(),
		payment.NewChargeStrategy(models.PaymentCard, gateway),
		payment.NewChargeStrategy(models.PaymentUPI, gateway),
		payment.NewChargeStrategy(models.PaymentNetBanking, gateway),
		payment.NewHostedStrategy(gateway, cfg.Gateway.ReturnURL, cfg.Gateway.CancelURL),
	)

	// Checkout orchestrator
	orderService := orders.NewService(orderRepo, couponRepo, cartRepo, engine, dispatcher, gateway, emailService, log)

	// Background sweep for abandoned hosted-checkout orders
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := orders.NewSweeper(orderRepo, gateway, orderService, cfg.Checkout.PendingOrderTTL, cfg.Checkout.SweepInterval, log)
	go sweeper.Run(sweepCtx)

	// Initialize controllers
	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		User:     controllers.NewUserController(db, emailService),
		Product:  controllers.NewProductController(db),
		Cart:     controllers.NewCartController(cartRepo, db),
		Checkout: controllers.NewCheckoutController(orderService, engine, cartRepo, couponRepo),
		Order:    controllers.NewOrderController(orderService),
		Coupon:   controllers.NewCouponController(couponRepo),
		Settings: controllers.NewSettingsController(settingsRepo),
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
