package patients

import (
	"context"
	"errors"
	"time"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for clinic-scoped patients.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error)
	List(ctx context.Context, params listPatientsParams) ([]models.Patient, *pagination.Cursor, error)
	SetPushToken(ctx context.Context, clinicID, patientID uuid.UUID, token string, installedAt time.Time) (bool, error)
	ClearPushToken(ctx context.Context, clinicID, patientID uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a patients repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listPatientsParams struct {
	ClinicID   uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	ActiveOnly bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", patientID, clinicID).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listPatientsParams) ([]models.Patient, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Patient{}).Where("clinic_id = ?", params.ClinicID)
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Patient
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) SetPushToken(ctx context.Context, clinicID, patientID uuid.UUID, token string, installedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ? AND clinic_id = ?", patientID, clinicID).
		Updates(map[string]any{
			"push_token":       token,
			"app_installed_at": installedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ClearPushToken(ctx context.Context, clinicID, patientID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ? AND clinic_id = ?", patientID, clinicID).
		Updates(map[string]any{
			"push_token":       nil,
			"app_installed_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
