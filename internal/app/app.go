package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/No25ha/Market/internal/api"
	"github.com/No25ha/Market/internal/checkout"
	"github.com/No25ha/Market/internal/config"
	handler "github.com/No25ha/Market/internal/handler/http"
	"github.com/No25ha/Market/internal/session"
	"github.com/No25ha/Market/internal/store"
	"github.com/No25ha/Market/pkg/eventbus"
	"github.com/No25ha/Market/pkg/health"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/kvstore"
	"github.com/No25ha/Market/pkg/retry"
	"github.com/No25ha/Market/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront daemon.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	storage    kvstore.Store
	session    *session.Store
	storefront *store.Storefront
	tracing    tracing.Shutdown
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.TracingEnabled
	tcfg.OTLPEndpoint = cfg.OTLPEndpoint
	tcfg.SampleRate = cfg.TracingSampleRate
	shutdownTracing, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Upstream client. 401s from token-bearing calls are published on the bus
	// so the session can sign out.
	authFailures := eventbus.New[httpclient.AuthFailure]()
	opts := []httpclient.Option{
		httpclient.WithLogger(logger),
		httpclient.WithAuthFailures(authFailures),
	}
	if cfg.BreakerEnabled {
		bcfg := httpclient.DefaultCircuitBreakerConfig("storefront-api")
		bcfg.Timeout = cfg.BreakerTimeout
		bcfg.FailureRatio = cfg.BreakerFailureRatio
		bcfg.MinRequests = cfg.BreakerMinRequests
		opts = append(opts, httpclient.WithBreaker(bcfg))
	}
	ccfg := httpclient.DefaultConfig(cfg.APIBaseURL)
	ccfg.Timeout = cfg.HTTPTimeout
	ccfg.RateLimit = cfg.RateLimitRPS
	ccfg.RateBurst = cfg.RateLimitBurst
	client, err := httpclient.New(ccfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	// Build the dependency graph.
	authSvc := api.NewAuthService(client, logger)
	catalogSvc := api.NewCatalogService(client, logger)
	cartSvc := api.NewCartService(client, logger)
	wishlistSvc := api.NewWishlistService(client, logger)
	addressSvc := api.NewAddressService(client, logger)
	orderSvc := api.NewOrderService(client, logger)

	sess := session.New(authSvc, storage, authFailures, logger)

	policy := retry.Policy{
		MaxAttempts:  cfg.RetryMaxAttempts,
		InitialDelay: cfg.RetryInitialDelay,
		MaxJitter:    cfg.RetryMaxJitter,
		Logger:       logger,
	}
	cart := store.NewCart(cartSvc, sess, policy, logger)
	wishlist := store.NewWishlist(wishlistSvc, sess, policy, logger)
	addresses := store.NewAddressBook(addressSvc, sess, policy, logger)
	orders := store.NewOrders(orderSvc, sess, policy, logger)
	storefront := store.NewStorefront(cart, wishlist, addresses, orders, sess.Changes(), logger)

	checkoutSvc := checkout.NewCheckoutService(orderSvc, sess, cart, addresses, orders, cfg.ReturnURL, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("storage", health.PingChecker(storage))
	healthHandler.RegisterNonCritical("upstream", health.BreakerChecker(client.BreakerState))

	// HTTP router.
	router := handler.NewRouter(handler.Services{
		Session:   sess,
		Passwords: authSvc,
		Catalog:   catalogSvc,
		Cart:      cart,
		Wishlist:  wishlist,
		Addresses: addresses,
		Orders:    orders,
		Checkout:  checkoutSvc,
	}, healthHandler, logger, handler.RouterConfig{
		APIToken:      cfg.APIToken,
		CORSOrigins:   cfg.CORSOrigins,
		PprofCIDRs:    cfg.PprofCIDRs,
		CatalogMaxAge: cfg.CatalogMaxAge,
		Timeout:       cfg.HTTPTimeout * 2,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout*2 + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		storage:    storage,
		session:    sess,
		storefront: storefront,
		tracing:    shutdownTracing,
		httpServer: httpServer,
	}, nil
}

// openStorage opens the persisted-session backend named by the config.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (kvstore.Store, error) {
	switch cfg.Storage {
	case config.StorageRedis:
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
		return kvstore.NewRedis(rdb, cfg.RedisPrefix), nil
	case config.StorageMemory:
		logger.Warn("session storage is in memory; sign-ins will not survive a restart")
		return kvstore.NewMemory(), nil
	default:
		f, err := kvstore.NewFile(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("open session file: %w", err)
		}
		logger.Info("session storage opened", slog.String("path", cfg.StoragePath))
		return f, nil
	}
}

// Run restores the saved session, starts the HTTP server and blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	restored := a.session.Rehydrate(ctx)
	a.logger.Info("session restored", slog.String("state", string(restored.State)))

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

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Stop background reloads before the storage goes away.
	a.storefront.Close()

	if err := a.tracing(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	if err := a.storage.Close(); err != nil {
		a.logger.Error("storage close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
