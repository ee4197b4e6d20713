package patients

import (
	"context"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service defines patient directory operations. Every call is scoped to the
// caller's clinic; a patient belonging to another clinic behaves as absent.
type Service interface {
	Create(ctx context.Context, input CreatePatientInput) (*models.Patient, error)
	Get(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	RegisterDevice(ctx context.Context, clinicID, patientID uuid.UUID, pushToken string) error
	UnregisterDevice(ctx context.Context, clinicID, patientID uuid.UUID) error
}

type service struct {
	repo Repository
}

// CreatePatientInput captures the fields needed to add a patient.
type CreatePatientInput struct {
	ClinicID    uuid.UUID
	FirstName   string
	LastName    string
	Email       *string
	Phone       *string
	DateOfBirth *time.Time
}

// ListParams configures pagination for the patient directory.
type ListParams struct {
	ClinicID   uuid.UUID
	Limit      int
	Cursor     string
	ActiveOnly bool
}

// ListResult wraps returned patients and the cursor for the next page.
type ListResult struct {
	Items  []models.Patient `json:"items"`
	Cursor string           `json:"cursor"`
}

// NewService wires patient directory dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "patients repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreatePatientInput) (*models.Patient, error) {
	if input.ClinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patient name required")
	}

	patient := &models.Patient{
		ClinicID:    input.ClinicID,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Email:       input.Email,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create patient")
	}
	return patient, nil
}

func (s *service) Get(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error) {
	if clinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if patientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patient id required")
	}
	patient, err := s.repo.GetByID(ctx, clinicID, patientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get patient")
	}
	if patient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
	}
	return patient, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ClinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}

	query := listPatientsParams{
		ClinicID:   params.ClinicID,
		Limit:      params.Limit,
		ActiveOnly: params.ActiveOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list patients")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) RegisterDevice(ctx context.Context, clinicID, patientID uuid.UUID, pushToken string) error {
	if clinicID == uuid.Nil || patientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "clinic id and patient id required")
	}
	if strings.TrimSpace(pushToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "push token required")
	}
	updated, err := s.repo.SetPushToken(ctx, clinicID, patientID, pushToken, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register device")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
	}
	return nil
}

func (s *service) UnregisterDevice(ctx context.Context, clinicID, patientID uuid.UUID) error {
	if clinicID == uuid.Nil || patientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "clinic id and patient id required")
	}
	updated, err := s.repo.ClearPushToken(ctx, clinicID, patientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unregister device")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
	}
	return nil
}
