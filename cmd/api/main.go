package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"saas-billing/internal/auth"
	"saas-billing/internal/client"
	"saas-billing/internal/config"
	"saas-billing/internal/locale"
	"saas-billing/internal/repository"
	"saas-billing/internal/server"
	"saas-billing/internal/service"
	"saas-billing/internal/telemetry"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// @title SaaS Billing API
// @version 1.0.0
// @description Plans, credits, provider checkout and webhooks.
// @BasePath /
// @securityDefinitions.apikey bearerAuth
// @in header
// @name Authorization
func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}

	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	catalogRepo := repository.NewCatalogRepository(db)
	if cfg.Database.Seed {
		if err := catalogRepo.Seed(ctx); err != nil {
			log.Fatalf("Failed to seed catalog: %v", err)
		}
	}

	rdb, err := client.InitRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}
	locker := client.NewRedisLocker(client.NewRedsync(rdb), 10*time.Second)

	verifier, err := auth.NewVerifier(ctx, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.JWKSURL)
	if err != nil {
		log.Fatalf("Failed to init token verifier: %v", err)
	}
	sessions := auth.NewSessionAccessor(verifier, auth.SessionConfig{
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		AuthURL:      cfg.Auth.AuthURL,
		TokenURL:     cfg.Auth.TokenURL,
		RedirectURL:  cfg.BaseURL + "/api/v1/auth/callback",
		CookieSecure: cfg.SecureCookies(),
	})

	providers := client.ConfiguredProviders(cfg)
	log.Infof("Payment providers: %v", providers.Names())

	orderRepo := repository.NewOrderRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	catalogService := service.NewCatalogService(catalogRepo)
	fulfillmentService := service.NewFulfillmentService(db, providers, catalogRepo, orderRepo, subRepo, creditRepo, webhookEventRepo)
	orderService := service.NewOrderService(
		providers,
		catalogService,
		orderRepo,
		repository.NewIdempotencyRepository(rdb),
		fulfillmentService,
		service.OrderOptions{
			BaseURL:        cfg.BaseURL,
			PlanProvider:   cfg.Payments.PlanProvider,
			CreditProvider: cfg.Payments.CreditProvider,
			PayCurrency:    cfg.Crypto.PayCurrency,
			IdempotencyTTL: cfg.Payments.IdempotencyTTL,
			WebhookPaths: map[string]string{
				client.ProviderCrypto: cfg.Crypto.CallbackPath,
			},
		},
	)

	resolver := locale.NewResolver(cfg.Locale.Supported, cfg.Locale.Default)

	// Init HTTP server
	srv := server.NewServer(cfg, sessions, resolver, &server.Services{
		Auth:         service.NewAuthService(sessions, repository.NewUserRepository(db), repository.NewNonceRepository(rdb), cfg.Auth.NonceTTL),
		Catalog:      catalogService,
		Order:        orderService,
		Fulfillment:  fulfillmentService,
		Subscription: service.NewSubscriptionService(locker, catalogService, subRepo),
		Credit:       service.NewCreditService(db, creditRepo, repository.NewUsageRepository(db)),
		Favorite:     service.NewFavoriteService(catalogService, repository.NewFavoriteRepository(db)),
	})

	serverAddr := cfg.HTTP.Addr()
	log.Infof("Starting HTTP server on %s", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	if err := rdb.Close(); err != nil {
		log.Errorf("Redis close error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Errorf("Tracing shutdown error: %v", err)
	}
}
