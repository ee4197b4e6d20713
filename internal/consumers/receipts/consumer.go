package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk-backend/internal/notifications"
	"github.com/clinicdesk/clinicdesk-backend/pkg/db/models"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

type lifecycleService interface {
	Transition(ctx context.Context, input notifications.TransitionInput) (*models.Notification, error)
}

// Receipt is the message the push transport posts back after attempting a
// delivery. Status carries the observed outcome, never "scheduled".
type Receipt struct {
	NotificationID uuid.UUID  `json:"notificationId"`
	ClinicID       uuid.UUID  `json:"clinicId"`
	Status         string     `json:"status"`
	FailureReason  *string    `json:"failureReason,omitempty"`
	OccurredAt     *time.Time `json:"occurredAt,omitempty"`
}

// Consumer applies delivery receipts from the external push transport to the
// notification lifecycle. Receipts can arrive duplicated or out of order;
// duplicates are idempotent no-ops and stale transitions are acked after
// logging so the subscription does not loop on them.
type Consumer struct {
	lifecycle    lifecycleService
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

type processResult struct {
	ack  bool
	nack bool
}

func NewConsumer(lifecycle lifecycleService, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if lifecycle == nil {
		return nil, errors.New("notification lifecycle service is required")
	}
	if subscription == nil {
		return nil, errors.New("delivery receipts subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		lifecycle:    lifecycle,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes delivery receipts until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var receipt Receipt
	if err := json.Unmarshal(msg.Data, &receipt); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal delivery receipt", err)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"notification_id": receipt.NotificationID.String(),
		"clinic_id":       receipt.ClinicID.String(),
		"status":          receipt.Status,
	})

	if receipt.NotificationID == uuid.Nil || receipt.ClinicID == uuid.Nil {
		c.logg.Error(logCtx, "delivery receipt missing identifiers", errors.New("empty id"))
		return processResult{ack: true}
	}

	target, err := enums.ParseNotificationStatus(receipt.Status)
	if err != nil {
		c.logg.Error(logCtx, "delivery receipt carries unknown status", err)
		return processResult{ack: true}
	}

	_, err = c.lifecycle.Transition(ctx, notifications.TransitionInput{
		ClinicID:       receipt.ClinicID,
		NotificationID: receipt.NotificationID,
		Target:         target,
		FailureReason:  receipt.FailureReason,
	})
	if err != nil {
		return c.handleTransitionError(logCtx, err)
	}

	c.logg.Info(logCtx, "applied delivery receipt")
	return processResult{ack: true}
}

func (c *Consumer) handleTransitionError(ctx context.Context, err error) processResult {
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeDependency, pkgerrors.CodeInternal:
		c.logg.Error(ctx, "delivery receipt transition failed, will retry", err)
		return processResult{nack: true}
	case pkgerrors.CodeStateConflict:
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "stale delivery receipt dropped")
		return processResult{ack: true}
	case pkgerrors.CodeNotFound:
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "delivery receipt for unknown notification")
		return processResult{ack: true}
	default:
		c.logg.Error(ctx, "delivery receipt rejected", err)
		return processResult{ack: true}
	}
}
