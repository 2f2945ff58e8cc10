package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/config"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/event"
	handler "github.com/a-bjn/sudexpert-storefront/internal/notifier/handler/http"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/repository/postgres"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/sender"
	sendermock "github.com/a-bjn/sudexpert-storefront/internal/notifier/sender/mock"
	sendersmtp "github.com/a-bjn/sudexpert-storefront/internal/notifier/sender/smtp"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/service"
	"github.com/a-bjn/sudexpert-storefront/pkg/database"
	"github.com/a-bjn/sudexpert-storefront/pkg/health"
	pkgkafka "github.com/a-bjn/sudexpert-storefront/pkg/kafka"
	"github.com/a-bjn/sudexpert-storefront/pkg/middleware"
)

// App wires together all dependencies and runs the notifier service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize the PostgreSQL pool.
	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Email sender.
	var snd sender.Sender
	switch cfg.EmailSender {
	case "smtp":
		snd = sendersmtp.NewSender(sendersmtp.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}, logger)
	default:
		snd = sendermock.NewSender(logger)
	}
	logger.Info("email sender selected", slog.String("sender", snd.Name()))

	// Build the dependency graph.
	repo := postgres.NewSubmissionRepository(pool)
	eventProducer := event.NewProducer(producer, logger)
	notifierService := service.NewNotifierService(repo, snd, eventProducer, logger, cfg.Recipients, cfg.HourlyLimit)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	router := handler.NewRouter(
		notifierService,
		healthHandler,
		logger,
		middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		cfg.RateLimitRPS,
		cfg.RateLimitBurst,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		httpServer: httpServer,
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

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
