package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
)

// LoginRequest captures the staff credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StaffDTO is the staff identity shape returned to clients.
type StaffDTO struct {
	ID          uuid.UUID       `json:"id"`
	ClinicID    uuid.UUID       `json:"clinicId"`
	Email       string          `json:"email"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Role        enums.StaffRole `json:"role"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
}

// LoginResponse contains the token pair and staff profile produced by a successful login.
type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         *StaffDTO `json:"user"`
}

// FromModel maps a staff record onto the client-facing DTO.
func FromModel(user *models.StaffUser) *StaffDTO {
	if user == nil {
		return nil
	}
	return &StaffDTO{
		ID:          user.ID,
		ClinicID:    user.ClinicID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
	}
}
