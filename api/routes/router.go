package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/clinicdesk-backend/api/controllers"
	"github.com/clinicdesk/clinicdesk-backend/api/middleware"
	"github.com/clinicdesk/clinicdesk-backend/internal/auth"
	"github.com/clinicdesk/clinicdesk-backend/internal/clinics"
	"github.com/clinicdesk/clinicdesk-backend/internal/ledger"
	"github.com/clinicdesk/clinicdesk-backend/internal/notifications"
	"github.com/clinicdesk/clinicdesk-backend/internal/patients"
	"github.com/clinicdesk/clinicdesk-backend/internal/stats"
	"github.com/clinicdesk/clinicdesk-backend/pkg/auth/session"
	"github.com/clinicdesk/clinicdesk-backend/pkg/config"
	"github.com/clinicdesk/clinicdesk-backend/pkg/db"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
	"github.com/clinicdesk/clinicdesk-backend/pkg/redis"
)

// SessionManager is the session surface the router hands to middleware and
// the logout/refresh controllers.
type SessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Deps bundles everything the HTTP surface needs. All services are
// constructed in cmd/api and injected here.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Sessions      SessionManager
	Auth          auth.Service
	Notifications notifications.Service
	Patients      patients.Service
	Ledger        ledger.Service
	Stats         stats.Service
	Clinics       clinics.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writePolicy := middleware.NewRateLimitPolicy(
		"write",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteIPLimit,
		cfg.RateLimit.WriteClinicLimit,
	)
	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())

		// Refresh and logout validate the presented token themselves so
		// they can accept expired access tokens.
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.ClinicContext(logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1", func(r chi.Router) {
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.With(middleware.RateLimit(writePolicy, deps.Redis, logg)).
					Post("/", controllers.CreateNotification(deps.Notifications, logg))
				r.Get("/{notificationId}", controllers.GetNotification(deps.Notifications, logg))
				r.With(middleware.RateLimit(writePolicy, deps.Redis, logg)).
					Post("/{notificationId}/status", controllers.TransitionNotification(deps.Notifications, logg))
				r.With(middleware.RateLimit(writePolicy, deps.Redis, logg)).
					Delete("/{notificationId}", controllers.CancelNotification(deps.Notifications, logg))
			})

			r.Get("/stats/notifications", controllers.NotificationStats(deps.Stats, logg))

			r.Route("/patients", func(r chi.Router) {
				r.Get("/", controllers.ListPatients(deps.Patients, logg))
				r.With(middleware.RateLimit(writePolicy, deps.Redis, logg)).
					Post("/", controllers.CreatePatient(deps.Patients, logg))
				r.Get("/{patientId}", controllers.GetPatient(deps.Patients, logg))
				r.Put("/{patientId}/device", controllers.RegisterPatientDevice(deps.Patients, logg))
				r.Delete("/{patientId}/device", controllers.UnregisterPatientDevice(deps.Patients, logg))
			})

			r.Route("/credits", func(r chi.Router) {
				r.Get("/balance", controllers.ClinicBalance(deps.Ledger, logg))
				r.Get("/history", controllers.CreditHistory(deps.Ledger, logg))
				r.With(middleware.RequireAnyRole(logg, "owner", "admin")).
					Post("/top-up", controllers.TopUpCredits(deps.Ledger, logg))
			})

			r.Route("/clinic", func(r chi.Router) {
				r.Get("/", controllers.GetClinic(deps.Clinics, logg))
				r.With(middleware.RequireAnyRole(logg, "owner", "admin")).
					Put("/timezone", controllers.UpdateClinicTimezone(deps.Clinics, logg))
			})
		})
	})

	return r
}
