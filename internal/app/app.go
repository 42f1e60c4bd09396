// Package app wires together all dependencies and runs the checkout service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/alex90271/stripecheckout/pkg/database"
	"github.com/alex90271/stripecheckout/pkg/health"
	"github.com/alex90271/stripecheckout/pkg/httpclient"
	pkgkafka "github.com/alex90271/stripecheckout/pkg/kafka"
	"github.com/alex90271/stripecheckout/pkg/secrets"

	"github.com/alex90271/stripecheckout/internal/config"
	"github.com/alex90271/stripecheckout/internal/event"
	handler "github.com/alex90271/stripecheckout/internal/handler/http"
	providerstripe "github.com/alex90271/stripecheckout/internal/provider/stripe"
	pgrepo "github.com/alex90271/stripecheckout/internal/repository/postgres"
	redisrepo "github.com/alex90271/stripecheckout/internal/repository/redis"
	"github.com/alex90271/stripecheckout/internal/sender"
	"github.com/alex90271/stripecheckout/internal/sender/email"
	"github.com/alex90271/stripecheckout/internal/sender/groupme"
	"github.com/alex90271/stripecheckout/internal/service"
	"github.com/alex90271/stripecheckout/migrations"
)

// App holds the wired application and its long-lived resources.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	catalog    *service.CatalogService
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Settings store.
	pgCfg := &database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}
	pool, err := database.NewPostgresPool(ctx, pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Catalog cache and webhook dedup store.
	rdb, err := database.NewRedisClient(ctx, &database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Settings encryption.
	cipher, err := secrets.New(cfg.SettingsKey)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("init settings cipher: %w", err)
	}

	// Build the dependency graph.
	settingsRepo := pgrepo.NewSettingsRepository(pool, cipher)
	catalogCache := redisrepo.NewCatalogCache(rdb, cfg.ProductCacheTTL, cfg.ShippingCacheTTL)
	seenStore := redisrepo.NewSeenEventStore(rdb, cfg.SeenEventTTL)
	eventProducer := event.NewProducer(producer, logger)

	catalogService := service.NewCatalogService(settingsRepo, catalogCache, providerstripe.Factory, logger)
	checkoutService := service.NewCheckoutService(
		settingsRepo,
		catalogService,
		providerstripe.Factory,
		eventProducer,
		service.SiteIdentity{
			Name:       cfg.SiteName,
			URL:        cfg.SiteURL,
			SuccessURL: cfg.SuccessURL,
			CancelURL:  cfg.CancelURL,
		},
		logger,
	)

	// Notification senders. GroupMe goes through a circuit breaker so a
	// dead bot endpoint stops being called for every order.
	groupmeClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.CircuitBreakerConfig{
			Name:         "groupme",
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     time.Duration(cfg.CBInterval) * time.Second,
			Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		},
		logger,
	)
	dispatcher := sender.NewDispatcher(logger,
		email.New(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}),
		groupme.New(groupmeClient, cfg.GroupMeURL),
	)

	reconcilerService := service.NewReconcilerService(
		settingsRepo, seenStore, providerstripe.Factory, dispatcher, eventProducer, logger,
	)

	// Health checks. The broker is non-critical: checkout and webhook
	// handling survive without it, only event publishing degrades.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(catalogService, checkoutService, reconcilerService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		rdb:        rdb,
		producer:   producer,
		catalog:    catalogService,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and background refresh loop, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.CatalogRefreshInterval > 0 {
		go a.catalog.RefreshLoop(ctx, a.cfg.CatalogRefreshInterval)
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
