package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hansade2005/shopsavvy/internal/config"
	"github.com/Hansade2005/shopsavvy/internal/email"
	"github.com/Hansade2005/shopsavvy/internal/events"
	"github.com/Hansade2005/shopsavvy/internal/notification"
	"github.com/Hansade2005/shopsavvy/internal/records"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("[Notifier] KAFKA_BROKERS environment variable is required")
	}
	consumerGroup := "email-notifier"

	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "noreply@shopsavvy.example.com")

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] ShopSavvy - Email Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Notifier] Topic: %s", cfg.KafkaTopic)
	log.Printf("[Notifier] Group: %s", consumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s", smtpHost, smtpPort)
	log.Printf("[Notifier] From: %s", smtpFrom)

	// Record store for filling in missing emails and product names
	var store records.Store
	if cfg.PostgresURL != "" {
		db, err := records.ConnectPostgres(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("[Notifier] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		store, err = records.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("[Notifier] Failed to prepare record store: %v", err)
		}
		log.Println("[Notifier] Records: PostgreSQL")
	} else {
		log.Println("[Notifier] Records: none (events must carry emails)")
	}

	emailSvc := email.NewService(smtpHost, smtpPort, smtpFrom)
	handler := notification.NewHandler(emailSvc, store)

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Notifier] Starting event consumer...")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
