package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/membership-platform/kafka"
	"github.com/tair/membership-platform/pkg/logger"
	"github.com/tair/membership-platform/pkg/notifier"
	"github.com/tair/membership-platform/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "notification-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Msg("Starting notification service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Pick the delivery backend
	var sender notifier.Notifier
	if smtpAddr := getEnv("SMTP_ADDR", ""); smtpAddr != "" {
		sender = notifier.NewSMTP(
			smtpAddr,
			getEnv("SMTP_FROM", "noreply@localhost"),
			getEnv("SMTP_USERNAME", ""),
			getEnv("SMTP_PASSWORD", ""),
		)
		logger.Logger.Info().Str("smtp_addr", smtpAddr).Msg("Using SMTP notifier")
	} else {
		sender = notifier.NewConsole()
		logger.Logger.Warn().Msg("SMTP_ADDR not set, logging notifications to console")
	}

	// Initialize Kafka consumer
	brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	groupID := getEnv("KAFKA_GROUP_ID", "notification-service")

	consumer, err := kafka.NewConsumer(brokers, groupID, func(ctx context.Context, event kafka.CheckoutConfirmedEvent) error {
		return sendConfirmation(ctx, sender, event)
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka consumer")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down notification service...")
}

// sendConfirmation renders and delivers the confirmation message for a
// settled registration or membership
func sendConfirmation(ctx context.Context, sender notifier.Notifier, event kafka.CheckoutConfirmedEvent) error {
	if event.RecipientEmail == "" {
		logger.Warn(ctx).
			Str("public_id", event.PublicID).
			Msg("Confirmation event without recipient email, skipping")
		return nil
	}

	var subject, body string
	amount := decimal.NewFromInt(event.AmountCents).Div(decimal.NewFromInt(100)).StringFixed(2)

	switch event.RecordType {
	case "membership":
		subject = fmt.Sprintf("Your %s membership is active", event.OfferingTitle)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour %s membership is now active.\nReference: %s\nAmount: %s %s\n\nThank you!",
			event.RecipientName, event.OfferingTitle, event.PublicID, event.Currency, amount,
		)
	default:
		subject = fmt.Sprintf("Registration confirmed: %s", event.OfferingTitle)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour registration for %s is confirmed.\nReference: %s\nAmount: %s %s\n\nSee you there!",
			event.RecipientName, event.OfferingTitle, event.PublicID, event.Currency, amount,
		)
	}

	if err := sender.Notify(event.RecipientEmail, subject, body); err != nil {
		return fmt.Errorf("failed to deliver confirmation for %s: %w", event.PublicID, err)
	}

	logger.Info(ctx).
		Str("public_id", event.PublicID).
		Str("record_type", event.RecordType).
		Str("recipient", event.RecipientEmail).
		Msg("Confirmation sent")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
