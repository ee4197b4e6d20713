package auth

import (
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	ClinicID *uuid.UUID
	Role     enums.StaffRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clinic staff clients.
// ClinicID is the tenant boundary every request is scoped to.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	ClinicID *uuid.UUID      `json:"clinic_id,omitempty"`
	Role     enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
