package ledger

import (
	"context"
	"errors"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages the clinic push-credit counter and its immutable event
// trail. Counter mutations are single atomic UPDATEs so concurrent creates
// and cancellations never race on a read-modify-write.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	DecrementBalance(ctx context.Context, clinicID uuid.UUID) (bool, error)
	IncrementBalance(ctx context.Context, clinicID uuid.UUID, amount int) (bool, error)
	GetBalance(ctx context.Context, clinicID uuid.UUID) (int, bool, error)
	CreateEvent(ctx context.Context, event *models.CreditEvent) error
	ListByClinicID(ctx context.Context, clinicID uuid.UUID, limit int) ([]models.CreditEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// DecrementBalance consumes one push credit. Returns false without error when
// the guard predicate matched no row (no credit left or unknown clinic).
func (r *repository) DecrementBalance(ctx context.Context, clinicID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Clinic{}).
		Where("id = ? AND push_notification_balance > 0", clinicID).
		UpdateColumn("push_notification_balance", gorm.Expr("push_notification_balance - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) IncrementBalance(ctx context.Context, clinicID uuid.UUID, amount int) (bool, error) {
	if amount <= 0 {
		return false, errors.New("increment amount must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.Clinic{}).
		Where("id = ?", clinicID).
		UpdateColumn("push_notification_balance", gorm.Expr("push_notification_balance + ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) GetBalance(ctx context.Context, clinicID uuid.UUID) (int, bool, error) {
	var clinic models.Clinic
	err := r.db.WithContext(ctx).
		Select("id", "push_notification_balance").
		Where("id = ?", clinicID).
		First(&clinic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return clinic.PushNotificationBalance, true, nil
}

func (r *repository) CreateEvent(ctx context.Context, event *models.CreditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByClinicID(ctx context.Context, clinicID uuid.UUID, limit int) ([]models.CreditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.CreditEvent
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
