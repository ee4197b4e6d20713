package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/clinicdesk/clinicdesk-backend/pkg/auth"
	"github.com/clinicdesk/clinicdesk-backend/pkg/auth/session"
	"github.com/clinicdesk/clinicdesk-backend/pkg/config"
	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return session.NewAccessID(), "rotated-refresh-token", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubClinicService struct {
	clinic *models.Clinic
}

func (s *stubClinicService) Get(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error) {
	return s.clinic, nil
}

func (s *stubClinicService) Location(ctx context.Context, clinicID uuid.UUID) (*time.Location, error) {
	return time.UTC, nil
}

func (s *stubClinicService) SetTimezone(ctx context.Context, clinicID uuid.UUID, timezone string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "clinicdesk-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	clinicID := uuid.New()
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard}),
		Sessions: stubSessionManager{},
		Clinics:  &stubClinicService{clinic: &models.Clinic{ID: clinicID, Name: "Test Clinic"}},
	})
}

func mintToken(t *testing.T, cfg *config.Config, clinicID uuid.UUID, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		ClinicID: &clinicID,
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t, testConfig())

	t.Run("liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("public ping", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"public"`) {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}

func TestRouterRequiresAuth(t *testing.T) {
	router := newTestRouter(t, testConfig())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodGet, "/api/v1/stats/notifications"},
		{http.MethodGet, "/api/v1/credits/balance"},
		{http.MethodGet, "/api/v1/patients"},
	}
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRouterAuthedClinicEndpoint(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	clinicID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clinic", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, clinicID, enums.StaffRolePractitioner))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Test Clinic") {
		t.Fatalf("expected clinic payload, got %s", rec.Body.String())
	}
}

func TestRouterRefreshRejectsGarbageToken(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/public/auth/refresh", strings.NewReader(`{"refreshToken":"abc"}`))
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token, got %d", rec.Code)
	}
}

func TestRouterRefreshRotatesSession(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	clinicID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/public/auth/refresh", strings.NewReader(`{"refreshToken":"current-refresh-token"}`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, clinicID, enums.StaffRolePractitioner))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "rotated-refresh-token") {
		t.Fatalf("expected rotated token in body, got %s", rec.Body.String())
	}
	if rec.Header().Get("X-CD-Token") == "" {
		t.Fatal("expected new access token header")
	}
}

func TestRouterTopUpRequiresPrivilegedRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	clinicID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/credits/top-up", strings.NewReader(`{"amount":10}`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, clinicID, enums.StaffRolePractitioner))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for practitioner top-up, got %d", rec.Code)
	}
}
