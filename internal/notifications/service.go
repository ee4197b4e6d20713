package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk-backend/internal/ledger"
	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/outbox"
	"github.com/clinicdesk/clinicdesk-backend/pkg/outbox/payloads"
	"github.com/clinicdesk/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type patientDirectory interface {
	GetByID(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error)
}

// Service is the notification lifecycle engine. Creation, transition, and
// cancellation run inside a single transaction together with the credit
// ledger and the outbox write so no effect is ever applied partially.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Notification, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Notification, error)
	Cancel(ctx context.Context, input CancelInput) (bool, error)
	Get(ctx context.Context, clinicID, notificationID uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo     Repository
	patients patientDirectory
	credits  ledger.Service
	tx       txRunner
	outbox   outboxPublisher
}

// CreateInput captures everything needed to schedule or immediately send a
// notification. DeliveryMethod defaults to push and Kind to scheduled.
type CreateInput struct {
	ClinicID       uuid.UUID
	PatientID      uuid.UUID
	ActorUserID    uuid.UUID
	ActorRole      enums.StaffRole
	Type           enums.NotificationType
	DeliveryMethod enums.DeliveryMethod
	Kind           enums.ScheduleKind
	Title          string
	Message        string
	ScheduledFor   *time.Time
}

// TransitionInput carries a lifecycle transition request.
type TransitionInput struct {
	ClinicID       uuid.UUID
	NotificationID uuid.UUID
	ActorUserID    uuid.UUID
	ActorRole      enums.StaffRole
	Target         enums.NotificationStatus
	FailureReason  *string
}

// CancelInput carries a cancellation request for a still scheduled notification.
type CancelInput struct {
	ClinicID       uuid.UUID
	NotificationID uuid.UUID
	ActorUserID    uuid.UUID
	ActorRole      enums.StaffRole
}

// ListParams configures filtering and pagination for the notification list.
type ListParams struct {
	ClinicID  uuid.UUID
	PatientID *uuid.UUID
	Status    *enums.NotificationStatus
	Type      *enums.NotificationType
	Limit     int
	Cursor    string
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires the lifecycle engine dependencies.
func NewService(repo Repository, patients patientDirectory, credits ledger.Service, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if patients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "patient directory required")
	}
	if credits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "credit ledger required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{
		repo:     repo,
		patients: patients,
		credits:  credits,
		tx:       tx,
		outbox:   outboxSvc,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	if input.ClinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if input.PatientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patient id required")
	}
	if input.DeliveryMethod == "" {
		input.DeliveryMethod = enums.DeliveryMethodPush
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if input.Kind == "" {
		input.Kind = enums.ScheduleKindScheduled
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid schedule kind")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}

	patient, err := s.patients.GetByID(ctx, input.ClinicID, input.PatientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve patient")
	}
	if patient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message must not be empty")
	}

	if input.DeliveryMethod == enums.DeliveryMethodPush {
		if !patient.HasPushCapability() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				"patient has no registered push device, use sms or email instead")
		}
		if input.Kind == enums.ScheduleKindScheduled && !patient.HasActiveAppInstall() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				"patient has no active app installation")
		}
	}

	now := time.Now().UTC()
	notification := &models.Notification{
		ClinicID:       input.ClinicID,
		PatientID:      input.PatientID,
		Type:           input.Type,
		DeliveryMethod: input.DeliveryMethod,
		Status:         enums.NotificationStatusScheduled,
		Title:          strings.TrimSpace(input.Title),
		Message:        message,
		ScheduledFor:   input.ScheduledFor,
		CreatedByID:    input.ActorUserID,
	}
	if notification.ScheduledFor == nil {
		notification.ScheduledFor = &now
	}
	if input.Kind == enums.ScheduleKindImmediate {
		notification.Status = enums.NotificationStatusSent
		notification.SentAt = &now
	}

	// Credits are consumed only when a push notification is scheduled.
	// Immediate sends and non-push channels bypass the ledger.
	debit := input.DeliveryMethod == enums.DeliveryMethodPush && input.Kind == enums.ScheduleKindScheduled

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
		}
		if debit {
			if _, err := s.credits.WithTx(tx).Debit(ctx, ledger.BalanceChangeInput{
				ClinicID:       input.ClinicID,
				NotificationID: &notification.ID,
				ActorUserID:    input.ActorUserID,
			}); err != nil {
				return err
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationCreated,
			AggregateType: enums.AggregateNotification,
			AggregateID:   notification.ID,
			Actor:         actorRef(input.ActorUserID, input.ClinicID, input.ActorRole),
			Version:       1,
			Data: payloads.NotificationCreatedEvent{
				NotificationID: notification.ID,
				ClinicID:       notification.ClinicID,
				PatientID:      notification.PatientID,
				Type:           notification.Type,
				DeliveryMethod: notification.DeliveryMethod,
				Status:         notification.Status,
				ScheduledFor:   notification.ScheduledFor,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Notification, error) {
	if input.ClinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if input.NotificationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	notification, err := s.repo.GetByID(ctx, input.ClinicID, input.NotificationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get notification")
	}
	if notification == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}

	// A transition to the current status is an idempotent retry from the
	// delivery pipeline. No write, no event.
	if notification.Status == input.Target {
		return notification, nil
	}

	if !canTransition(notification.Status, input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal status transition").
			WithDetails(map[string]string{
				"from": notification.Status.String(),
				"to":   input.Target.String(),
			})
	}

	now := time.Now().UTC()
	fromStatus := notification.Status
	updates := map[string]any{"status": input.Target}
	notification.Status = input.Target

	switch input.Target {
	case enums.NotificationStatusSent:
		if notification.SentAt == nil {
			updates["sent_at"] = now
			notification.SentAt = &now
		}
	case enums.NotificationStatusDelivered:
		if notification.DeliveredAt == nil {
			updates["delivered_at"] = now
			notification.DeliveredAt = &now
		}
	case enums.NotificationStatusRead:
		if notification.ReadAt == nil {
			updates["read_at"] = now
			notification.ReadAt = &now
		}
	case enums.NotificationStatusFailed:
		if notification.FailedAt == nil {
			updates["failed_at"] = now
			notification.FailedAt = &now
		}
		if input.FailureReason != nil {
			updates["failure_reason"] = *input.FailureReason
			notification.FailureReason = input.FailureReason
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateStatus(ctx, notification.ClinicID, notification.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notification status")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationStatusChanged,
			AggregateType: enums.AggregateNotification,
			AggregateID:   notification.ID,
			Actor:         actorRef(input.ActorUserID, input.ClinicID, input.ActorRole),
			Version:       1,
			Data: payloads.NotificationStatusChangedEvent{
				NotificationID: notification.ID,
				ClinicID:       notification.ClinicID,
				PatientID:      notification.PatientID,
				FromStatus:     fromStatus,
				ToStatus:       input.Target,
				FailureReason:  input.FailureReason,
				ChangedAt:      now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// Cancel deletes a still scheduled notification and refunds the push credit
// consumed at creation. Non-push channels never charged a credit, so nothing
// is refunded for them.
func (s *service) Cancel(ctx context.Context, input CancelInput) (bool, error) {
	if input.ClinicID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if input.NotificationID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	notification, err := s.repo.GetByID(ctx, input.ClinicID, input.NotificationID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get notification")
	}
	if notification == nil {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	if notification.Status != enums.NotificationStatusScheduled {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "only scheduled notifications can be deleted")
	}

	refund := notification.DeliveryMethod == enums.DeliveryMethodPush
	now := time.Now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		deleted, err := repo.Delete(ctx, input.ClinicID, notification.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
		}
		if !deleted {
			// Raced with another cancel. Nothing to refund.
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		if refund {
			if _, err := s.credits.WithTx(tx).Refund(ctx, ledger.BalanceChangeInput{
				ClinicID:       input.ClinicID,
				NotificationID: &notification.ID,
				ActorUserID:    input.ActorUserID,
			}); err != nil {
				return err
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationCanceled,
			AggregateType: enums.AggregateNotification,
			AggregateID:   notification.ID,
			Actor:         actorRef(input.ActorUserID, input.ClinicID, input.ActorRole),
			Version:       1,
			Data: payloads.NotificationCanceledEvent{
				NotificationID: notification.ID,
				ClinicID:       notification.ClinicID,
				PatientID:      notification.PatientID,
				DeliveryMethod: notification.DeliveryMethod,
				Refunded:       refund,
				CanceledAt:     now,
			},
		})
	})
	if err != nil {
		return false, err
	}
	return refund, nil
}

func (s *service) Get(ctx context.Context, clinicID, notificationID uuid.UUID) (*models.Notification, error) {
	if clinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if notificationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	notification, err := s.repo.GetByID(ctx, clinicID, notificationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get notification")
	}
	if notification == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return notification, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ClinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid type filter")
	}

	query := listNotificationsParams{
		ClinicID:  params.ClinicID,
		PatientID: params.PatientID,
		Status:    params.Status,
		Type:      params.Type,
		Limit:     params.Limit,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func actorRef(userID, clinicID uuid.UUID, role enums.StaffRole) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	clinic := clinicID
	return &outbox.ActorRef{
		UserID:   userID,
		ClinicID: &clinic,
		Role:     string(role),
	}
}
