package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/clinicdesk/clinicdesk-backend/pkg/auth"
	"github.com/clinicdesk/clinicdesk-backend/pkg/config"
	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/security"
)

type stubStaffRepo struct {
	user        *models.StaffUser
	findErr     error
	lastLoginID uuid.UUID
}

func (s *stubStaffRepo) FindByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubStaffRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginID = id
	return nil
}

type stubSessionManager struct {
	token    string
	accessID string
	err      error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.accessID = accessID
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "clinicdesk-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func activeStaffUser(t *testing.T, password string) *models.StaffUser {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.StaffUser{
		ID:           uuid.New(),
		ClinicID:     uuid.New(),
		Email:        "practitioner@clinic.test",
		PasswordHash: hash,
		FirstName:    "Dana",
		LastName:     "Iversen",
		Role:         enums.StaffRolePractitioner,
		IsActive:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	user := activeStaffUser(t, "correct horse battery staple")
	repo := &stubStaffRepo{user: user}
	sessions := &stubSessionManager{token: "refresh-token"}

	svc, err := NewService(ServiceParams{
		StaffRepo:      repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected token pair %+v", result)
	}
	if repo.lastLoginID != user.ID {
		t.Fatal("last login was not recorded")
	}
	if result.User == nil || result.User.ClinicID != user.ClinicID {
		t.Fatalf("unexpected user payload %+v", result.User)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("claims carry wrong user id %s", claims.UserID)
	}
	if claims.ClinicID == nil || *claims.ClinicID != user.ClinicID {
		t.Fatal("claims missing clinic id")
	}
	if claims.ID != sessions.accessID {
		t.Fatal("jti does not match the stored session id")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeStaffUser(t, "right-password")
	svc, err := NewService(ServiceParams{
		StaffRepo:      &stubStaffRepo{user: user},
		SessionManager: &stubSessionManager{token: "refresh-token"},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password"})
	assertUnauthorized(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, err := NewService(ServiceParams{
		StaffRepo:      &stubStaffRepo{},
		SessionManager: &stubSessionManager{token: "refresh-token"},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@clinic.test", Password: "whatever"})
	assertUnauthorized(t, err)
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeStaffUser(t, "right-password")
	user.IsActive = false
	svc, err := NewService(ServiceParams{
		StaffRepo:      &stubStaffRepo{user: user},
		SessionManager: &stubSessionManager{token: "refresh-token"},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "right-password"})
	assertUnauthorized(t, err)
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected login to fail")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}
