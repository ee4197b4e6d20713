package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
)

// Notification stores one lifecycle-tracked patient notification scoped to a
// clinic. Timestamp columns record the first time each lifecycle stage was
// reached and are never overwritten.
type Notification struct {
	ID             uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID       uuid.UUID                `gorm:"column:clinic_id;type:uuid;not null;index"`
	PatientID      uuid.UUID                `gorm:"column:patient_id;type:uuid;not null;index"`
	Type           enums.NotificationType   `gorm:"column:type;type:notification_type;not null"`
	DeliveryMethod enums.DeliveryMethod     `gorm:"column:delivery_method;type:delivery_method;not null"`
	Status         enums.NotificationStatus `gorm:"column:status;type:notification_status;not null;default:'scheduled'"`
	Title          string                   `gorm:"column:title;type:text;not null"`
	Message        string                   `gorm:"column:message;type:text;not null"`
	ScheduledFor   *time.Time               `gorm:"column:scheduled_for;type:timestamptz"`
	SentAt         *time.Time               `gorm:"column:sent_at;type:timestamptz"`
	DeliveredAt    *time.Time               `gorm:"column:delivered_at;type:timestamptz"`
	ReadAt         *time.Time               `gorm:"column:read_at;type:timestamptz"`
	FailedAt       *time.Time               `gorm:"column:failed_at;type:timestamptz"`
	FailureReason  *string                  `gorm:"column:failure_reason"`
	CreatedByID    uuid.UUID                `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
