package ledger

import (
	"context"
	"encoding/json"

	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines push-credit balance operations. Debit and Refund are meant
// to run inside the caller's transaction (via WithTx) so the counter change
// and the notification write commit or roll back as one unit.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Debit(ctx context.Context, input BalanceChangeInput) (*models.CreditEvent, error)
	Refund(ctx context.Context, input BalanceChangeInput) (*models.CreditEvent, error)
	TopUp(ctx context.Context, input TopUpInput) (*models.CreditEvent, error)
	Balance(ctx context.Context, clinicID uuid.UUID) (int, error)
	History(ctx context.Context, clinicID uuid.UUID, limit int) ([]models.CreditEvent, error)
}

type service struct {
	repo Repository
}

// BalanceChangeInput captures the data a debit or refund event requires.
type BalanceChangeInput struct {
	ClinicID       uuid.UUID
	NotificationID *uuid.UUID
	ActorUserID    uuid.UUID
	Metadata       json.RawMessage
}

// TopUpInput captures an administrative credit purchase.
type TopUpInput struct {
	ClinicID    uuid.UUID
	ActorUserID uuid.UUID
	Amount      int
	Metadata    json.RawMessage
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger repository required")
	}
	return &service{repo: repo}, nil
}

// WithTx rebinds the service to the provided transaction.
func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Debit(ctx context.Context, input BalanceChangeInput) (*models.CreditEvent, error) {
	if err := validateChange(input); err != nil {
		return nil, err
	}

	decremented, err := s.repo.DecrementBalance(ctx, input.ClinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit push credit")
	}
	if !decremented {
		// Distinguish an unknown clinic from an exhausted balance.
		_, found, err := s.repo.GetBalance(ctx, input.ClinicID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read clinic balance")
		}
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient push notification balance")
	}

	return s.recordEvent(ctx, input.ClinicID, input.NotificationID, input.ActorUserID, enums.CreditEventTypeDebit, -1, input.Metadata)
}

func (s *service) Refund(ctx context.Context, input BalanceChangeInput) (*models.CreditEvent, error) {
	if err := validateChange(input); err != nil {
		return nil, err
	}

	incremented, err := s.repo.IncrementBalance(ctx, input.ClinicID, 1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund push credit")
	}
	if !incremented {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
	}

	return s.recordEvent(ctx, input.ClinicID, input.NotificationID, input.ActorUserID, enums.CreditEventTypeRefund, 1, input.Metadata)
}

func (s *service) TopUp(ctx context.Context, input TopUpInput) (*models.CreditEvent, error) {
	if input.ClinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id required")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "top up amount must be positive")
	}

	incremented, err := s.repo.IncrementBalance(ctx, input.ClinicID, input.Amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top up push credits")
	}
	if !incremented {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
	}

	return s.recordEvent(ctx, input.ClinicID, nil, input.ActorUserID, enums.CreditEventTypeTopUp, input.Amount, input.Metadata)
}

func (s *service) Balance(ctx context.Context, clinicID uuid.UUID) (int, error) {
	if clinicID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	balance, found, err := s.repo.GetBalance(ctx, clinicID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read clinic balance")
	}
	if !found {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
	}
	return balance, nil
}

func (s *service) History(ctx context.Context, clinicID uuid.UUID, limit int) ([]models.CreditEvent, error) {
	if clinicID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	events, err := s.repo.ListByClinicID(ctx, clinicID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list credit events")
	}
	return events, nil
}

func (s *service) recordEvent(ctx context.Context, clinicID uuid.UUID, notificationID *uuid.UUID, actorID uuid.UUID, eventType enums.CreditEventType, amount int, metadata json.RawMessage) (*models.CreditEvent, error) {
	balance, found, err := s.repo.GetBalance(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read balance after change")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
	}

	event := &models.CreditEvent{
		ClinicID:       clinicID,
		NotificationID: notificationID,
		ActorUserID:    actorID,
		Type:           eventType,
		Amount:         amount,
		BalanceAfter:   balance,
		Metadata:       metadata,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record credit event")
	}
	return event, nil
}

func validateChange(input BalanceChangeInput) error {
	if input.ClinicID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "clinic id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor user id required")
	}
	return nil
}
