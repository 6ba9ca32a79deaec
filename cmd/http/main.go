package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/rafaelleal24/product-catalog/docs"
	"github.com/rafaelleal24/product-catalog/internal/adapters/config"
	"github.com/rafaelleal24/product-catalog/internal/adapters/http"
	"github.com/rafaelleal24/product-catalog/internal/adapters/http/controllers"
	"github.com/rafaelleal24/product-catalog/internal/adapters/metrics"
	"github.com/rafaelleal24/product-catalog/internal/adapters/outbox"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres/repository"
	"github.com/rafaelleal24/product-catalog/internal/adapters/rabbitmq"
	"github.com/rafaelleal24/product-catalog/internal/adapters/redis"
	"github.com/rafaelleal24/product-catalog/internal/core/domain"
	"github.com/rafaelleal24/product-catalog/internal/core/logger"
	"github.com/rafaelleal24/product-catalog/internal/core/service"
	"github.com/rafaelleal24/product-catalog/internal/core/validation"
)

// @title       Product Catalog API
// @version     1.0
// @description Product catalog: create and list products

// @host     localhost:8000
// @BasePath /

//go:generate swag init -d ../.. -g cmd/http/main.go -o ../../docs --parseInternal

func main() {
	// initialize config and logger
	cfg := config.NewConfig()
	err := logger.Initialize(logger.Options{
		CollectorEndpoint: cfg.Logger.Endpoint,
		ServiceName:       cfg.Logger.ServiceName,
		IsProduction:      cfg.Logger.IsProduction,
		Level:             logger.ParseLevel(cfg.Logger.Level),
	})
	if err != nil {
		// logger not available yet, fall back to stderr
		fmt.Fprintln(os.Stderr, "failed to initialize logger: "+err.Error())
		os.Exit(1)
	}

	// cancellable context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database connection
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to database", err, map[string]any{"driver": cfg.Database.Driver})
	}
	defer postgres.Close(db)
	logger.Info(ctx, "Connected to database", map[string]any{
		"driver":         cfg.Database.Driver,
		"max_open_conns": cfg.Database.MaxOpenConns,
		"auto_migrate":   cfg.Database.AutoMigrate,
	})

	// initialize redis connection
	redisClient, err := redis.NewConnection(cfg.Redis)
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to Redis", err, nil)
	}
	defer redisClient.Close()
	logger.Info(ctx, "Connected to Redis", nil)

	// initialize rabbitmq connection
	broker, err := rabbitmq.NewPublisher(cfg.RabbitMQ)
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to RabbitMQ", err, nil)
	}
	defer broker.Close()
	logger.Info(ctx, "Connected to RabbitMQ", nil)

	// repositories
	outboxRepository := repository.NewOutboxRepository(db)
	productRepository := repository.NewProductRepository(db, outboxRepository)
	txManager := postgres.NewTransactionManager(db)

	// validation, idempotency and rate limiting
	validator, err := validation.NewValidator(domain.NewCategories(cfg.Catalog.Categories))
	if err != nil {
		logger.Fatal(ctx, "Failed to build validator", err, nil)
	}
	idempotencyCache := redis.NewCache[service.IdempotencyRecord[domain.Product]](redisClient, "idempotency")
	idempotency := service.NewIdempotencyGuard(idempotencyCache, service.IdempotencyOptions{TTL: cfg.Catalog.IdempotencyTTL})
	rateLimiter := redis.NewRateLimiter(redisClient)

	// metrics and outbox handler (uses cancellable context)
	appMetrics := metrics.New()
	outboxHandler := outbox.NewHandler(outboxRepository, broker, appMetrics, cfg.Outbox)
	go outboxHandler.Start(ctx)
	logger.Info(ctx, "Outbox handler started", map[string]any{"interval": cfg.Outbox.Interval.String(), "batch_size": cfg.Outbox.BatchSize})

	// services
	productService := service.NewProductService(productRepository, txManager, validator, idempotency)

	// controllers
	productController := controllers.NewProductController(productService)
	healthController := controllers.NewHealthController([]controllers.HealthChecker{
		{Name: "postgres", Check: func(ctx context.Context) error { return postgres.Ping(ctx, db) }},
		{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx) }},
		{Name: "rabbitmq", Check: func(ctx context.Context) error { return broker.HealthCheck() }},
	})

	// router
	router := http.NewRouter(healthController, productController, rateLimiter, appMetrics, cfg.Catalog)

	// graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info(ctx, "Received shutdown signal", map[string]any{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info(ctx, "Starting HTTP server", map[string]any{"addr": cfg.HTTP.BindInterface + ":" + cfg.HTTP.Port})
	if err := router.ListenAndServe(ctx, cfg.HTTP); err != nil {
		logger.Error(ctx, "HTTP server stopped", err, nil)
	}
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := logger.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, "logger shutdown error: "+err.Error())
	}
}
