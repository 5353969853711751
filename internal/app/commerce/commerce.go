// Package commerce assembles the storefront API: one postgres pool,
// one redis cache, the service layer and the HTTP router.
package commerce

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/vmcandles/commerce-api/internal/cache"
	"github.com/vmcandles/commerce-api/internal/config"
	"github.com/vmcandles/commerce-api/internal/invoicepdf"
	"github.com/vmcandles/commerce-api/internal/lib/jwt"
	"github.com/vmcandles/commerce-api/internal/migrations"
	"github.com/vmcandles/commerce-api/internal/services"
	"github.com/vmcandles/commerce-api/internal/storage/repository"
	"github.com/vmcandles/commerce-api/internal/webpay"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	renderer, err := invoicepdf.NewRenderer(cfg.InvoiceDir)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	gateway := webpay.NewClient(cfg.CommerceCode, cfg.APIKey, cfg.Webpay.Environment)

	svc := Services{
		Auth:          services.NewAuthService(db, jwtMaker, logger),
		Users:         services.NewUserService(db, logger),
		Profiles:      services.NewProfileService(db, logger),
		Catalog:       services.NewCatalogService(db, cacheRedis, logger),
		Carts:         services.NewCartService(db, db, logger),
		Orders:        services.NewOrderService(db, db, logger),
		Payments:      services.NewPaymentService(db, gateway, cfg.FrontendURL, cfg.BackendURL, logger),
		Subscriptions: services.NewSubscriptionService(db, logger),
		Invoices:      services.NewInvoiceService(db, db, renderer, logger),
		Audio:         services.NewAudioService(db, logger),
		Reviews:       services.NewReviewService(db, db, logger),
		Wishlists:     services.NewWishlistService(db, db, logger),
		Analytics:     services.NewAnalyticsService(db, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, svc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database pool", slog.Any("err", closeErr))
		}
		return err
	}
}
