package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
)

// CreditEvent records an immutable push-credit balance movement for a clinic.
type CreditEvent struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID       uuid.UUID             `gorm:"column:clinic_id;type:uuid;not null;index"`
	NotificationID *uuid.UUID            `gorm:"column:notification_id;type:uuid"`
	ActorUserID    uuid.UUID             `gorm:"column:actor_user_id;type:uuid;not null"`
	Type           enums.CreditEventType `gorm:"column:type;type:credit_event_type;not null"`
	Amount         int                   `gorm:"column:amount;not null"`
	BalanceAfter   int                   `gorm:"column:balance_after;not null"`
	Metadata       json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
}
