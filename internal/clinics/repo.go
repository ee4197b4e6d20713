package clinics

import (
	"context"
	"errors"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for clinic tenant records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByID(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error)
	Create(ctx context.Context, clinic *models.Clinic) error
	UpdateTimezone(ctx context.Context, clinicID uuid.UUID, timezone string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a clinic repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByID(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error) {
	var clinic models.Clinic
	err := r.db.WithContext(ctx).Where("id = ?", clinicID).First(&clinic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clinic, nil
}

func (r *repository) Create(ctx context.Context, clinic *models.Clinic) error {
	return r.db.WithContext(ctx).Create(clinic).Error
}

func (r *repository) UpdateTimezone(ctx context.Context, clinicID uuid.UUID, timezone string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Clinic{}).
		Where("id = ?", clinicID).
		UpdateColumn("timezone", timezone)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
