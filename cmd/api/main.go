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
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/deshimart/commerce/internal/catalog"
	cataloghttp "github.com/deshimart/commerce/internal/catalog/delivery/http"
	catalogrepo "github.com/deshimart/commerce/internal/catalog/repository"
	"github.com/deshimart/commerce/internal/dashboard"
	"github.com/deshimart/commerce/internal/order"
	ordercommand "github.com/deshimart/commerce/internal/order/usecase/command"
	orderrepo "github.com/deshimart/commerce/internal/order/repository"
	"github.com/deshimart/commerce/internal/payment"
	"github.com/deshimart/commerce/internal/payment/client"
	paymentcommand "github.com/deshimart/commerce/internal/payment/usecase/command"
	paymentrepo "github.com/deshimart/commerce/internal/payment/repository"
	userhttp "github.com/deshimart/commerce/internal/user/delivery/http"
	userrepo "github.com/deshimart/commerce/internal/user/repository"
	"github.com/deshimart/commerce/kafka"
	"github.com/deshimart/commerce/pkg/database"
	"github.com/deshimart/commerce/pkg/logger"
	"github.com/deshimart/commerce/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "commerce-api")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting commerce API")

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
		DBName:   getEnv("DB_NAME", "commercedb"),
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
	userRepository := userrepo.NewGormUserRepository(db)
	if err := userRepository.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run user migrations")
	}
	orderRepository := orderrepo.NewGormOrderRepository(db)
	if err := orderRepository.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run order migrations")
	}
	if err := catalogrepo.NewGormProductRepository(db).AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run catalog migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Optional Redis client for callback dedup and dashboard caching
	redisClient := newRedisClient()

	// Optional Kafka publisher for order events
	publisher := newPublisher()
	if publisher != nil {
		defer publisher.Close()
	}
	var eventPublisher ordercommand.OrderEventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}

	// Externally visible URLs for gateway callbacks and redirects
	urls := paymentcommand.URLs{
		Frontend: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Backend:  getEnv("BACKEND_URL", "http://localhost:8080"),
	}

	// Initialize handlers with Wire DI
	catalogHandler, err := catalog.InitializeHTTPHandler(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize catalog handler")
	}

	orderHandler, err := order.InitializeHTTPHandler(db, eventPublisher, ordercommand.DefaultShippingPolicy())
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize order handler")
	}

	var dedup paymentcommand.DedupStore
	if redisClient != nil {
		dedup = paymentrepo.NewRedisDedupStore(redisClient)
	}
	paymentHandler, err := payment.InitializeHTTPHandler(db, client.NewSSLCommerzClientFromEnv(), dedup, urls)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize payment handler")
	}

	dashboardHandler, err := dashboard.InitializeHTTPHandler(db, redisClient)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize dashboard handler")
	}

	userHandler := userhttp.NewUserHandler(userRepository, orderRepository)

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8080")
	go startHTTPServer(httpPort, sqlDB,
		catalogHandler, userHandler, orderHandler, paymentHandler, dashboardHandler)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

type routeRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

func startHTTPServer(port string, db *sql.DB, catalogHandler *cataloghttp.CatalogHandler, handlers ...routeRegistrar) {
	router := mux.NewRouter()

	catalogHandler.RegisterRoutes(router)
	catalogHandler.RegisterHealthCheck(router, db)
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Wrap the whole router in a server span so every handler and log line
	// carries a trace id
	traced := otelhttp.NewHandler(c.Handler(router), "commerce-api")

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Str("swagger_endpoint", "/swagger/index.html").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, traced); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logger.Logger.Info().Msg("REDIS_ADDR not set, running without Redis")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", addr).Msg("Redis unreachable, running without Redis")
		return nil
	}

	logger.Logger.Info().Str("addr", addr).Msg("Connected to Redis")
	return client
}

func newPublisher() *kafka.Publisher {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		logger.Logger.Info().Msg("KAFKA_BROKERS not set, running without Kafka")
		return nil
	}

	publisher, err := kafka.NewPublisher(strings.Split(brokers, ","))
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Kafka unreachable, running without events")
		return nil
	}

	logger.Logger.Info().Str("brokers", brokers).Msg("Connected to Kafka")
	return publisher
}
