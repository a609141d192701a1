// Command reconciler settles orders whose provider notification never arrived.
package main

import (
	"context"
	"os/signal"
	"saas-billing/internal/client"
	"saas-billing/internal/config"
	"saas-billing/internal/repository"
	"saas-billing/internal/service"
	"saas-billing/internal/telemetry"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/robfig/cron/v3"
)

func main() {
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
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}

	fulfillmentService := service.NewFulfillmentService(
		db,
		client.ConfiguredProviders(cfg),
		repository.NewCatalogRepository(db),
		repository.NewOrderRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewCreditRepository(db),
		repository.NewWebhookEventRepository(db),
	)

	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = c.AddFunc(cfg.Reconciler.Schedule, func() {
		settled, err := fulfillmentService.Reconcile(ctx, cfg.Reconciler.StaleAge, cfg.Reconciler.Batch)
		if err != nil {
			log.Errorf("reconcile: %v", err)
			return
		}
		if settled > 0 {
			log.Infof("reconcile: %d orders changed", settled)
		}
	})
	if err != nil {
		log.Fatalf("Invalid reconciler schedule %q: %v", cfg.Reconciler.Schedule, err)
	}

	log.Infof("Reconciler running on %q", cfg.Reconciler.Schedule)
	c.Start()
	<-ctx.Done()

	log.Info("Signal received, waiting for the running pass...")
	<-c.Stop().Done()
}
