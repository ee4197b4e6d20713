package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/clinicdesk/clinicdesk-backend/internal/consumers/receipts"
	"github.com/clinicdesk/clinicdesk-backend/internal/ledger"
	"github.com/clinicdesk/clinicdesk-backend/internal/notifications"
	"github.com/clinicdesk/clinicdesk-backend/internal/patients"
	"github.com/clinicdesk/clinicdesk-backend/pkg/config"
	"github.com/clinicdesk/clinicdesk-backend/pkg/db"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
	"github.com/clinicdesk/clinicdesk-backend/pkg/migrate"
	"github.com/clinicdesk/clinicdesk-backend/pkg/outbox"
	"github.com/clinicdesk/clinicdesk-backend/pkg/pubsub"
)

// delivery-worker consumes delivery receipts from the external push
// transport and applies them to the notification lifecycle.
func main() {
	logg := logger.New(logger.Options{ServiceName: "delivery-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "delivery-worker"

	logg = logger.New(logger.Options{
		ServiceName: "delivery-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(
		notifications.NewRepository(dbClient.DB()),
		patients.NewRepository(dbClient.DB()),
		ledgerService,
		dbClient,
		outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	consumer, err := receipts.NewConsumer(
		notificationsService,
		pubsubClient.DeliveryReceiptsSubscription(),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting delivery worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "delivery worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "delivery worker shutting down gracefully")
}
