package payloads

import (
	"time"

	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// NotificationCreatedEvent is emitted when a notification is created,
// whatever its schedule kind. Downstream delivery workers pick push rows
// from this stream; the Status field tells them whether the row is waiting
// to be sent or was dispatched immediately.
type NotificationCreatedEvent struct {
	NotificationID uuid.UUID                `json:"notification_id"`
	ClinicID       uuid.UUID                `json:"clinic_id"`
	PatientID      uuid.UUID                `json:"patient_id"`
	Type           enums.NotificationType   `json:"type"`
	DeliveryMethod enums.DeliveryMethod     `json:"delivery_method"`
	Status         enums.NotificationStatus `json:"status"`
	ScheduledFor   *time.Time               `json:"scheduled_for,omitempty"`
}

// NotificationStatusChangedEvent is emitted on every lifecycle transition.
type NotificationStatusChangedEvent struct {
	NotificationID uuid.UUID                `json:"notification_id"`
	ClinicID       uuid.UUID                `json:"clinic_id"`
	PatientID      uuid.UUID                `json:"patient_id"`
	FromStatus     enums.NotificationStatus `json:"from_status"`
	ToStatus       enums.NotificationStatus `json:"to_status"`
	FailureReason  *string                  `json:"failure_reason,omitempty"`
	ChangedAt      time.Time                `json:"changed_at"`
}

// NotificationCanceledEvent is emitted when a scheduled notification is
// canceled and its push credit refunded.
type NotificationCanceledEvent struct {
	NotificationID uuid.UUID            `json:"notification_id"`
	ClinicID       uuid.UUID            `json:"clinic_id"`
	PatientID      uuid.UUID            `json:"patient_id"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	Refunded       bool                 `json:"refunded"`
	CanceledAt     time.Time            `json:"canceled_at"`
}
