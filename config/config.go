package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application, loaded from
// environment variables.
type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type MongoConfig struct {
	URI      string
	Database string
}

// GatewayConfig configures the hosted-checkout payment gateway client.
type GatewayConfig struct {
	BaseURL     string
	APIKey      string
	ReturnURL   string
	CancelURL   string
	HTTPTimeout int
}

// CheckoutConfig holds the pricing knobs and the pending-order expiry sweep.
type CheckoutConfig struct {
	ShippingFlatRate      float64
	FreeShippingThreshold float64
	PendingOrderTTL       time.Duration
	SweepInterval         time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "storefront"),
		},
		Gateway: GatewayConfig{
			BaseURL:     getEnv("GATEWAY_BASE_URL", "https://api.gateway.example.com"),
			APIKey:      getEnv("GATEWAY_API_KEY", ""),
			ReturnURL:   getEnv("GATEWAY_RETURN_URL", "http://localhost:8000/payment/return"),
			CancelURL:   getEnv("GATEWAY_CANCEL_URL", "http://localhost:8000/payment/cancel"),
			HTTPTimeout: getEnvAsInt("GATEWAY_HTTP_TIMEOUT", 30),
		},
		Checkout: CheckoutConfig{
			ShippingFlatRate:      getEnvAsFloat("SHIPPING_FLAT_RATE", 50),
			FreeShippingThreshold: getEnvAsFloat("FREE_SHIPPING_THRESHOLD", 999),
			PendingOrderTTL:       getEnvAsDuration("PENDING_ORDER_TTL", 24*time.Hour),
			SweepInterval:         getEnvAsDuration("SWEEP_INTERVAL", time.Hour),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}

	if c.Checkout.ShippingFlatRate < 0 || c.Checkout.FreeShippingThreshold < 0 {
		return fmt.Errorf("shipping configuration must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
