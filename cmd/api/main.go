package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clinicdesk/clinicdesk-backend/api/routes"
	"github.com/clinicdesk/clinicdesk-backend/internal/auth"
	"github.com/clinicdesk/clinicdesk-backend/internal/clinics"
	"github.com/clinicdesk/clinicdesk-backend/internal/ledger"
	"github.com/clinicdesk/clinicdesk-backend/internal/notifications"
	"github.com/clinicdesk/clinicdesk-backend/internal/patients"
	"github.com/clinicdesk/clinicdesk-backend/internal/staff"
	"github.com/clinicdesk/clinicdesk-backend/internal/stats"
	"github.com/clinicdesk/clinicdesk-backend/pkg/auth/session"
	"github.com/clinicdesk/clinicdesk-backend/pkg/config"
	"github.com/clinicdesk/clinicdesk-backend/pkg/db"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
	"github.com/clinicdesk/clinicdesk-backend/pkg/migrate"
	"github.com/clinicdesk/clinicdesk-backend/pkg/outbox"
	"github.com/clinicdesk/clinicdesk-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		StaffRepo:      staff.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	patientsRepo := patients.NewRepository(dbClient.DB())
	patientsService, err := patients.NewService(patientsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create patients service", err)
		os.Exit(1)
	}

	clinicsService, err := clinics.NewService(clinics.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create clinics service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(
		notifications.NewRepository(dbClient.DB()),
		patientsRepo,
		ledgerService,
		dbClient,
		outboxService,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(
		stats.NewRepository(dbClient.DB()),
		clinicsService,
		cfg.Stats.UpcomingWindowDays,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Sessions:      sessionManager,
			Auth:          authService,
			Notifications: notificationsService,
			Patients:      patientsService,
			Ledger:        ledgerService,
			Stats:         statsService,
			Clinics:       clinicsService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
