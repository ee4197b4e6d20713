package stats

import (
	"context"
	"time"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes the read-only counting queries behind the dashboard.
type Repository interface {
	CountByStatus(ctx context.Context, clinicID uuid.UUID) (map[enums.NotificationStatus]int64, error)
	CountScheduledBetween(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a stats repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type statusCountRow struct {
	Status enums.NotificationStatus `gorm:"column:status"`
	Count  int64                    `gorm:"column:count"`
}

func (r *repositoryImpl) CountByStatus(ctx context.Context, clinicID uuid.UUID) (map[enums.NotificationStatus]int64, error) {
	var rows []statusCountRow
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("status, COUNT(*) AS count").
		Where("clinic_id = ?", clinicID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.NotificationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repositoryImpl) CountScheduledBetween(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("clinic_id = ? AND status = ? AND scheduled_for >= ? AND scheduled_for < ?",
			clinicID, enums.NotificationStatusScheduled, from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
