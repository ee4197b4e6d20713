package clinics

import (
	"context"
	"time"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service exposes clinic tenant lookups.
type Service interface {
	Get(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error)
	Location(ctx context.Context, clinicID uuid.UUID) (*time.Location, error)
	SetTimezone(ctx context.Context, clinicID uuid.UUID, timezone string) error
}

type service struct {
	repo Repository
}

// NewService wires clinic dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "clinics repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error) {
	if clinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	clinic, err := s.repo.GetByID(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get clinic")
	}
	if clinic == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
	}
	return clinic, nil
}

// Location resolves the clinic's reporting timezone for local-day stats windows.
func (s *service) Location(ctx context.Context, clinicID uuid.UUID) (*time.Location, error) {
	clinic, err := s.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	return clinic.Location(), nil
}

func (s *service) SetTimezone(ctx context.Context, clinicID uuid.UUID, timezone string) error {
	if clinicID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timezone")
	}
	updated, err := s.repo.UpdateTimezone(ctx, clinicID, timezone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update clinic timezone")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
	}
	return nil
}
