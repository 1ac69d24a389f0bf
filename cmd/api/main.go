package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hansade2005/shopsavvy/internal/admin"
	"github.com/Hansade2005/shopsavvy/internal/api"
	"github.com/Hansade2005/shopsavvy/internal/cart"
	"github.com/Hansade2005/shopsavvy/internal/catalog"
	"github.com/Hansade2005/shopsavvy/internal/checkout"
	"github.com/Hansade2005/shopsavvy/internal/config"
	"github.com/Hansade2005/shopsavvy/internal/events"
	"github.com/Hansade2005/shopsavvy/internal/identity"
	"github.com/Hansade2005/shopsavvy/internal/payment"
	"github.com/Hansade2005/shopsavvy/internal/profile"
	"github.com/Hansade2005/shopsavvy/internal/records"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("[API] JWT_SECRET environment variable is required")
	}

	log.Println("[API] ========================================")
	log.Println("[API] ShopSavvy Storefront")
	log.Println("[API] ========================================")

	// Identity: hosted backend when configured, seeded fallback otherwise
	var provider identity.Provider
	if cfg.HostedAuthConfigured() {
		log.Printf("[API] Auth: hosted backend at %s", cfg.AuthURL)
		provider = identity.NewHostedProvider(cfg.AuthURL, cfg.AuthAnonKey)
	} else {
		log.Println("[API] Auth: fallback provider (seeded test users, passwords ignored)")
		provider = identity.NewFallbackProvider()
	}
	sessions := identity.NewSessionStore(provider)
	sessions.Resolve(ctx)
	tokens := identity.NewTokenService(cfg.JWTSecret, 24*time.Hour)

	// Record store: Postgres when configured, in-memory otherwise
	var store records.Store
	if cfg.PostgresURL != "" {
		db, err := records.ConnectPostgres(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		store, err = records.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("[API] Failed to prepare record store: %v", err)
		}
		log.Println("[API] Records: PostgreSQL")
	} else {
		store = records.NewMemoryStore()
		log.Println("[API] Records: in-memory")
	}

	// Cart persistence: Redis when configured, in-memory otherwise
	var storage cart.Storage
	if cfg.RedisAddr != "" {
		client, err := cart.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("[API] Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		storage = cart.NewRedisStorage(client)
		log.Printf("[API] Carts: Redis at %s", cfg.RedisAddr)
	} else {
		storage = cart.NewMemoryStorage()
		log.Println("[API] Carts: in-memory")
	}

	// Order events: Kafka when brokers are configured
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Printf("[API] Events: Kafka %v topic %s", cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		publisher = events.NopPublisher{}
		log.Println("[API] Events: disabled (no brokers configured)")
	}
	defer publisher.Close()

	pricing := cart.Pricing{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFee:           cfg.ShippingFee,
	}
	carts := cart.NewManager(storage, pricing)
	catalogSvc := catalog.NewService(store)
	profiles := profile.NewService(store)
	checkouts := checkout.NewManager()

	payments := payment.NewHTTPClient(cfg.PaymentURL, cfg.PaymentAPIKey)
	orders := checkout.NewService(store, payments, publisher)

	guard := admin.NewGuard(admin.NewStaticCredentials(), storage)

	handlers := api.NewHandlers(carts, catalogSvc, checkouts, orders)
	authHandlers := api.NewAuthHandlers(sessions, tokens, profiles)
	adminHandlers := api.NewAdminHandlers(guard, store, sessions, tokens)
	router := api.NewRouter(handlers, authHandlers, adminHandlers, tokens)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
