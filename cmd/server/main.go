package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/images"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgcache "github.com/Skotchmaster/storefront/pkg/cache"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format).With("service", "storefront")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.Database.URL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	rdb, err := pkgcache.Open(ctx, cfg.Redis.URL)
	if err != nil {
		cancel()
		log.Fatalf("redis open: %v", err)
	}

	var imageStore service.ImageStore = images.Passthrough{}
	if cfg.Images.Bucket != "" {
		s3Store, err := images.NewS3Store(ctx, images.Options{
			Bucket:    cfg.Images.Bucket,
			Region:    cfg.Images.Region,
			Folder:    cfg.Images.Folder,
			PublicURL: cfg.Images.PublicURL,
		})
		if err != nil {
			cancel()
			log.Fatalf("image store: %v", err)
		}
		imageStore = s3Store
	} else {
		logger.Warn("images_passthrough", "reason", "IMAGES_BUCKET not set")
	}
	cancel()

	publisher := events.NewPublisher(cfg.Kafka.Brokers)
	jwthelp.SecureCookies = cfg.Security.SecureCookies

	r := repo.New(db)
	authSvc := &service.AuthService{
		Repo:          r,
		Tokens:        cache.NewRefreshTokens(rdb),
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	}
	couponSvc := &service.CouponService{Repo: r}
	checkoutSvc := &service.CheckoutService{
		Repo:         r,
		Provider:     payment.NewStripe(cfg.Stripe.SecretKey),
		OrderNumbers: service.NewOrderNumberGenerator(r),
		Events:       publisher,
		OrderTopic:   cfg.Kafka.OrderTopic,
		Currency:     cfg.Stripe.Currency,
		ClientURL:    cfg.ClientURL,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Common(cfg.Security.CORSOrigins)...)
	e.Use(loggingmw.RequestLogger(logger))
	if cfg.Security.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:         cfg.Security.SecureCookies,
			TrustedOrigins: cfg.Security.CORSOrigins,
			SkipPaths:      []string{"/health/live", "/health/ready"},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: authSvc},
		Catalog: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Repo:     r,
			Featured: cache.NewFeatured(rdb),
			Images:   imageStore,
			Events:   publisher,
			Topic:    cfg.Kafka.ProductTopic,
		}},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		Coupons:  &httpserver.CouponHTTP{Svc: couponSvc},
		Payments: &httpserver.PaymentHTTP{Svc: checkoutSvc},
		Orders: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:   r,
			Events: publisher,
			Topic:  cfg.Kafka.OrderTopic,
		}},
		Analytics: &httpserver.AnalyticsHTTP{Svc: &service.AnalyticsService{Repo: r}},
		JWTSecret: []byte(cfg.JWT.AccessSecret),
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           e,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("publisher_close_error", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis_close_error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("stopped")
}
