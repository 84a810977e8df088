package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/tair/membership-platform/internal/catalog"
	catalogdomain "github.com/tair/membership-platform/internal/catalog/domain"
	cataloghandler "github.com/tair/membership-platform/internal/catalog/handler"
	"github.com/tair/membership-platform/internal/checkout"
	paypalgateway "github.com/tair/membership-platform/internal/checkout/gateway/paypal"
	checkouthandler "github.com/tair/membership-platform/internal/checkout/handler"
	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	"github.com/tair/membership-platform/internal/member"
	memberdomain "github.com/tair/membership-platform/internal/member/domain"
	memberhandler "github.com/tair/membership-platform/internal/member/handler"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	reconciledomain "github.com/tair/membership-platform/internal/reconcile/domain"
	reconcilehandler "github.com/tair/membership-platform/internal/reconcile/handler"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	"github.com/tair/membership-platform/kafka"
	"github.com/tair/membership-platform/pkg/database"
	"github.com/tair/membership-platform/pkg/logger"
	"github.com/tair/membership-platform/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "checkout-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting checkout service")

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

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "membershipdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&memberdomain.User{},
		&catalogdomain.Event{},
		&catalogdomain.MembershipLevel{},
		&registrationdomain.Registration{},
		&membershipdomain.Membership{},
		&ledgerdomain.Order{},
		&ledgerdomain.Payment{},
		&reconciledomain.WebhookEvent{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Initialize Kafka publisher for confirmation events
	var publisher checkout.ConfirmationPublisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		kafkaPublisher, err := kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka publisher")
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Logger.Warn().Msg("KAFKA_BROKERS not set, confirmation events disabled")
	}

	// Initialize PayPal gateway
	gateway, err := paypalgateway.New(paypalgateway.Config{
		ClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		ClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		WebhookID:    getEnv("PAYPAL_WEBHOOK_ID", ""),
		Live:         getEnv("PAYPAL_ENVIRONMENT", "sandbox") == "live",
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize PayPal gateway")
	}

	checkoutConfig := checkout.Config{
		BaseURL:  getEnv("BASE_URL", "http://localhost:3000"),
		Currency: getEnv("CURRENCY", "HKD"),
	}

	// Initialize handlers with Wire DI
	checkoutHandler, err := InitializeCheckoutHandler(db, gateway, publisher, checkoutConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize checkout handler")
	}

	webhookHandler, err := InitializeWebhookHandler(db, publisher, gateway)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize webhook handler")
	}

	memberHandler, err := member.InitializeHandler(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize member handler")
	}

	catalogHandler, err := catalog.InitializeHandler(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize catalog handler")
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8080")
	go startHTTPServer(checkoutHandler, webhookHandler, memberHandler, catalogHandler, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

func startHTTPServer(
	checkoutHandler *checkouthandler.CheckoutHandler,
	webhookHandler *reconcilehandler.WebhookHandler,
	memberHandler *memberhandler.MemberHandler,
	catalogHandler *cataloghandler.CatalogHandler,
	db *sql.DB,
	port string,
) {
	// Setup router
	router := mux.NewRouter()

	// Register all middlewares
	memberhandler.RegisterMiddlewares(router)

	// Register routes
	checkoutHandler.RegisterRoutes(router)
	webhookHandler.RegisterRoutes(router)
	memberHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)

	// Health check endpoint
	checkoutHandler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Str("webhook_endpoint", "/api/webhooks/paypal").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, c.Handler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
