package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/backend"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/config"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/event"
	handler "github.com/a-bjn/sudexpert-storefront/internal/storefront/handler/http"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/payment"
	paymentmock "github.com/a-bjn/sudexpert-storefront/internal/storefront/payment/mock"
	paymentstripe "github.com/a-bjn/sudexpert-storefront/internal/storefront/payment/stripe"
	redisrepo "github.com/a-bjn/sudexpert-storefront/internal/storefront/repository/redis"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/service"
	"github.com/a-bjn/sudexpert-storefront/pkg/health"
	"github.com/a-bjn/sudexpert-storefront/pkg/httpclient"
	pkgkafka "github.com/a-bjn/sudexpert-storefront/pkg/kafka"
	"github.com/a-bjn/sudexpert-storefront/pkg/middleware"
	"github.com/a-bjn/sudexpert-storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize Redis client.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// The backend HTTP client. Calls are single attempt: order and
	// payment-intent creation are not idempotent. The circuit breaker keeps
	// a struggling backend from eating every request's full timeout.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	var doer backend.HTTPDoer = baseClient
	if cfg.BackendBreaker {
		doer = httpclient.NewCircuitBreakerClient(
			baseClient,
			httpclient.DefaultCircuitBreakerConfig("backend"),
			logger,
		)
	}
	backendClient := backend.NewClient(cfg.BackendURL, doer, logger)

	// Payment provider.
	var provider payment.Provider
	switch cfg.PaymentProvider {
	case "stripe":
		provider = paymentstripe.NewProvider(cfg.StripeAPIBase, cfg.StripeSecretKey, baseClient, logger)
	default:
		provider = paymentmock.NewProvider()
	}
	logger.Info("payment provider selected", slog.String("provider", provider.Name()))

	// Build the dependency graph.
	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	store := redisrepo.NewStore(rdb, sessionTTL)
	// Catalog snapshots expire on a minutes scale, independent of how long
	// session-keyed data is retained.
	catalogCache := redisrepo.NewStore(rdb, time.Duration(cfg.CatalogCacheTTLMinutes)*time.Minute)
	eventProducer := event.NewProducer(producer, logger)

	cartService := service.NewCartService(store, eventProducer, logger)
	authService := service.NewAuthService(store, backendClient, logger)
	catalogService := service.NewCatalogService(backendClient, catalogCache, logger)
	checkoutService := service.NewCheckoutService(store, cartService, authService, backendClient, provider, eventProducer, logger)
	orderService := service.NewOrderService(backendClient, authService)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	router := handler.NewRouter(handler.RouterConfig{
		Cart:     cartService,
		Auth:     authService,
		Catalog:  catalogService,
		Checkout: checkoutService,
		Orders:   orderService,
		Health:   healthHandler,
		Logger:   logger,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: true,
		},
		SecureCookies: cfg.SecureCookies,
		SessionTTL:    sessionTTL,
		PprofCIDRs:    cfg.PprofCIDRs,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: the HTTP server drains first so
// in-flight checkouts finish, then the producers and clients close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
