package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dressly/storefront/internal/badge"
	"github.com/dressly/storefront/internal/catalog"
	"github.com/dressly/storefront/internal/config"
	"github.com/dressly/storefront/internal/event"
	handler "github.com/dressly/storefront/internal/handler/http"
	"github.com/dressly/storefront/internal/reconciler"
	redisrepo "github.com/dressly/storefront/internal/repository/redis"
	"github.com/dressly/storefront/internal/selection"
	"github.com/dressly/storefront/pkg/health"
	"github.com/dressly/storefront/pkg/httpclient"
	pkgkafka "github.com/dressly/storefront/pkg/kafka"
	"github.com/dressly/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	bus             *event.Bus
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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

	// Initialize tracing.
	tracingCfg := tracing.DefaultConfig("storefront-service")
	tracingCfg.Enabled = cfg.OTELEnabled
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.Environment = cfg.Environment
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Upstream HTTP clients. The product client goes through a circuit
	// breaker; cart calls do not, so a single slow line cannot trip the
	// breaker mid-reconciliation and fail its siblings.
	productHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("product"),
		logger,
	)
	cartHTTP := httpclient.New(httpclient.Config{
		Timeout:    cfg.ReconcileTimeout,
		MaxRetries: 0,
	})

	// Build the dependency graph.
	productClient := catalog.NewClient(productHTTP, cfg.ProductServiceURL, logger)
	cachedProducts := catalog.NewCachedClient(
		productClient, rdb, time.Duration(cfg.ProductCacheTTL)*time.Second, logger)

	sessionTTL := time.Duration(cfg.SessionTTL) * time.Hour
	repo := redisrepo.NewSelectionRepository(rdb, sessionTTL)
	selections := selection.NewService(cachedProducts, repo, logger)

	bus := event.NewBus()
	eventProducer := event.NewProducer(bus, producer, logger)
	rec := reconciler.New(cartHTTP, cfg.CartServiceURL, handler.ContextCredentials{},
		eventProducer, cfg.ReconcileTimeout, logger)

	counter := badge.NewCounter(cartHTTP, cfg.CartServiceURL, logger)
	go counter.Listen(bus.Subscribe())

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Selections:     selections,
		Reconciler:     rec,
		Badge:          counter,
		Health:         healthHandler,
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		producer:        producer,
		bus:             bus,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.bus.Close()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
