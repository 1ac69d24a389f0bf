package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all runtime configuration for the storefront.
// Presence of the hosted-auth parameters decides once, at startup,
// which identity backend is used; the same applies to Postgres for
// the record store and Redis for cart persistence.
type Config struct {
	ListenAddr string

	// Hosted auth collaborator (GoTrue-style API). Both must be set
	// for the hosted provider to be selected.
	AuthURL     string
	AuthAnonKey string

	// Record store backend. Empty means in-memory.
	PostgresURL string

	// Cart persistence backend. Empty means in-memory.
	RedisAddr     string
	RedisPassword string

	// Payment collaborator.
	PaymentURL    string
	PaymentAPIKey string

	// Order event publishing. Empty brokers disable publishing.
	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret string

	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// Load reads configuration from the environment, loading a .env file
// first when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using environment")
	}

	var brokers []string
	if b := os.Getenv("KAFKA_BROKERS"); b != "" {
		brokers = strings.Split(b, ",")
	}

	return &Config{
		ListenAddr:            getEnv("LISTEN_ADDR", ":8080"),
		AuthURL:               os.Getenv("AUTH_URL"),
		AuthAnonKey:           os.Getenv("AUTH_ANON_KEY"),
		PostgresURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		PaymentURL:            os.Getenv("PAYMENT_URL"),
		PaymentAPIKey:         os.Getenv("PAYMENT_API_KEY"),
		KafkaBrokers:          brokers,
		KafkaTopic:            getEnv("KAFKA_TOPIC", "shop-orders"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		FreeShippingThreshold: getEnvDecimal("FREE_SHIPPING_THRESHOLD", "100"),
		ShippingFee:           getEnvDecimal("SHIPPING_FEE", "9.99"),
	}
}

// HostedAuthConfigured reports whether the hosted auth collaborator
// can be used. The result is fixed for the process lifetime.
func (c *Config) HostedAuthConfigured() bool {
	return c.AuthURL != "" && c.AuthAnonKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	raw := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("[Config] Invalid decimal for %s: %q, using default %s", key, raw, defaultValue)
		d, _ = decimal.NewFromString(defaultValue)
	}
	return d
}
