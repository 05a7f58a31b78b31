// Command mercadito-server starts the marketplace HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andresfq/mercadito/internal/cache"
	"github.com/andresfq/mercadito/internal/config"
	"github.com/andresfq/mercadito/internal/limiter"
	"github.com/andresfq/mercadito/internal/migrate"
	"github.com/andresfq/mercadito/internal/repository/postgres"
	"github.com/andresfq/mercadito/internal/server/httpapi"
	"github.com/andresfq/mercadito/internal/service"
	"github.com/andresfq/mercadito/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	cfg := config.Load()

	// Flags override the environment.
	addr := flag.String("addr", cfg.Addr, "listen address")
	dsn := flag.String("dsn", cfg.DatabaseDSN, "PostgreSQL DSN")
	jwtKey := flag.String("jwt-key", cfg.JWTKey, "HS256 signing key (required)")
	accessTTL := flag.Duration("access-ttl", cfg.AccessTTL, "access token TTL")
	uploadsDir := flag.String("uploads-dir", cfg.UploadsDir, "product image directory")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	if *jwtKey == "" {
		logger.Fatal("missing jwt signing key (--jwt-key or MERCADITO_JWT_KEY)")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, *dsn); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, *dsn)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	productRepo := postgres.NewProductRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	purchaseRepo := postgres.NewPurchaseRepo(db)

	lim := limiter.NewPG(pool, 15*time.Minute, 5, 15*time.Minute)

	// Catalog cache is optional; the service degrades to straight DB reads.
	var catalogCache service.CatalogCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			cc := cache.NewCatalogCache(rdb, cfg.CatalogTTL)
			defer func() { _ = cc.Close() }()
			catalogCache = cc
		}
	}

	images, err := storage.NewImageStore(*uploadsDir, cfg.UploadsPrefix)
	if err != nil {
		logger.Fatal("image store", zap.Error(err))
	}

	// Services
	authSvc := service.NewAuthService(userRepo, profileRepo, []byte(*jwtKey), *accessTTL, lim)
	productSvc := service.NewProductService(productRepo, profileRepo, catalogCache)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	checkoutSvc := service.NewCheckoutService(cartRepo, purchaseRepo)
	profileSvc := service.NewProfileService(profileRepo, purchaseRepo)

	app := httpapi.NewServer(authSvc, productSvc, cartSvc, checkoutSvc, profileSvc, images, logger)
	router := httpapi.NewRouter(app, []byte(*jwtKey), logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
