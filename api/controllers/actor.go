package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk-backend/api/middleware"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
)

// requestActor resolves the tenant and actor identity seeded by the auth
// middleware. Missing clinic context fails closed.
type requestActor struct {
	ClinicID uuid.UUID
	UserID   uuid.UUID
	Role     enums.StaffRole
}

func resolveActor(r *http.Request) (requestActor, error) {
	clinicRaw := middleware.ClinicIDFromContext(r.Context())
	if clinicRaw == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "clinic context missing")
	}
	clinicID, err := uuid.Parse(clinicRaw)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid clinic id")
	}

	userRaw := middleware.UserIDFromContext(r.Context())
	if userRaw == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(userRaw)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	return requestActor{
		ClinicID: clinicID,
		UserID:   userID,
		Role:     enums.StaffRole(middleware.RoleFromContext(r.Context())),
	}, nil
}

func parsePathUUID(r *http.Request, value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}
