package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"royalfootwear/internal/clock"
	"royalfootwear/internal/config"
	"royalfootwear/internal/database"
	"royalfootwear/internal/handlers"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/lockout"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/metrics"
	"royalfootwear/internal/models"
	"royalfootwear/internal/router"
	"royalfootwear/internal/services"
	"royalfootwear/internal/validator"

	_ "royalfootwear/internal/docs" // Import swagger docs
)

// @title           Royal Footwear API
// @version         1.0
// @description     Storefront back end for Royal Footwear: catalog, cart, wishlist, checkout and an admin back office.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if appConfig.LogLevel != "" {
		if err := logger.SetLevel(appConfig.LogLevel); err != nil {
			log.Warnf("ignoring LOG_LEVEL: %v", err)
		}
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locker, closeLocker, err := newLocker(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeLocker()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	clk := clock.Real{}
	policy := lockout.Policy{MaxAttempts: appConfig.LoginMaxAttempts, LockDuration: appConfig.LoginLockDuration}
	pricing := models.PricingPolicy{
		TaxRate:               appConfig.TaxRate,
		FreeShippingThreshold: appConfig.FreeShippingThreshold,
		FlatShipping:          appConfig.FlatShippingFee,
	}

	userService := services.NewUserService(db, locker, policy, clk, m)
	productService := services.NewProductService(db, appConfig.DefaultImageURL)
	cartService := services.NewCartService(db, locker, m)
	wishlistService := services.NewWishlistService(db, locker, productService, cartService, clk, m)
	orderService := services.NewOrderService(db, locker, pricing, m)
	auditService := services.NewAuditService(db)

	engine := router.New(router.Handlers{
		Auth:     handlers.NewAuthHandler(userService, auditService),
		Product:  handlers.NewProductHandler(productService),
		Cart:     handlers.NewCartHandler(cartService, productService),
		Wishlist: handlers.NewWishlistHandler(wishlistService),
		Order:    handlers.NewOrderHandler(orderService, auditService),
		Admin:    handlers.NewAdminHandler(productService, orderService, userService, auditService),
		Internal: handlers.NewInternalHandler(cartService, productService),
	}, router.Options{
		InternalAPIKey: appConfig.InternalAPIKey,
		Metrics:        m,
	})

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Royal Footwear API on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server shutdown complete")
	return nil
}

// newLocker builds the per-account lock backend selected by LOCK_BACKEND.
func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		client, err := lock.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Get().Infow("Using redis lock backend", "addr", cfg.RedisAddr)
		return lock.NewRedisLocker(client), func() {
			if err := client.Close(); err != nil {
				logger.Get().Warnf("redis close error: %v", err)
			}
		}, nil
	case config.LockBackendMemory, "":
		logger.Get().Warn("Using in-memory lock backend; run a single API instance")
		locker := lock.NewMemoryLocker()
		return locker, locker.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}
