package notifications

import (
	"context"
	"testing"
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

type stubRepo struct {
	createFn       func(ctx context.Context, notification *models.Notification) error
	getFn          func(ctx context.Context, clinicID, notificationID uuid.UUID) (*models.Notification, error)
	listFn         func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	updateStatusFn func(ctx context.Context, clinicID, notificationID uuid.UUID, updates map[string]any) error
	deleteFn       func(ctx context.Context, clinicID, notificationID uuid.UUID) (bool, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	if s.createFn != nil {
		return s.createFn(ctx, notification)
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	return nil
}

func (s *stubRepo) GetByID(ctx context.Context, clinicID, notificationID uuid.UUID) (*models.Notification, error) {
	if s.getFn != nil {
		return s.getFn(ctx, clinicID, notificationID)
	}
	return nil, nil
}

func (s *stubRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, clinicID, notificationID uuid.UUID, updates map[string]any) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, clinicID, notificationID, updates)
	}
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, clinicID, notificationID uuid.UUID) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, clinicID, notificationID)
	}
	return true, nil
}

func (s *stubRepo) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubPatients struct {
	getFn func(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error)
}

func (s *stubPatients) GetByID(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error) {
	if s.getFn != nil {
		return s.getFn(ctx, clinicID, patientID)
	}
	return nil, nil
}

// stubLedger tracks a balance counter so conservation can be asserted.
type stubLedger struct {
	balance int
	debits  int
	refunds int
}

func (s *stubLedger) WithTx(tx *gorm.DB) ledger.Service { return s }

func (s *stubLedger) Debit(ctx context.Context, input ledger.BalanceChangeInput) (*models.CreditEvent, error) {
	if s.balance <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient push notification balance")
	}
	s.balance--
	s.debits++
	return &models.CreditEvent{BalanceAfter: s.balance}, nil
}

func (s *stubLedger) Refund(ctx context.Context, input ledger.BalanceChangeInput) (*models.CreditEvent, error) {
	s.balance++
	s.refunds++
	return &models.CreditEvent{BalanceAfter: s.balance}, nil
}

func (s *stubLedger) TopUp(ctx context.Context, input ledger.TopUpInput) (*models.CreditEvent, error) {
	s.balance += input.Amount
	return &models.CreditEvent{BalanceAfter: s.balance}, nil
}

func (s *stubLedger) Balance(ctx context.Context, clinicID uuid.UUID) (int, error) {
	return s.balance, nil
}

func (s *stubLedger) History(ctx context.Context, clinicID uuid.UUID, limit int) ([]models.CreditEvent, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func pushPatient(clinicID uuid.UUID) *models.Patient {
	token := "device-token"
	installed := time.Now().Add(-24 * time.Hour)
	return &models.Patient{
		ID:             uuid.New(),
		ClinicID:       clinicID,
		FirstName:      "Iris",
		LastName:       "Vega",
		PushToken:      &token,
		AppInstalledAt: &installed,
		IsActive:       true,
	}
}

type serviceFixture struct {
	svc     Service
	repo    *stubRepo
	ledger  *stubLedger
	outbox  *stubOutbox
	patient *models.Patient
}

func newFixture(t *testing.T, clinicID uuid.UUID, patient *models.Patient, balance int) *serviceFixture {
	t.Helper()
	repo := &stubRepo{}
	led := &stubLedger{balance: balance}
	ob := &stubOutbox{}
	dir := &stubPatients{
		getFn: func(ctx context.Context, cID, pID uuid.UUID) (*models.Patient, error) {
			if patient != nil && cID == clinicID && pID == patient.ID {
				return patient, nil
			}
			return nil, nil
		},
	}
	svc, err := NewService(repo, dir, led, stubTxRunner{}, ob)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &serviceFixture{svc: svc, repo: repo, ledger: led, outbox: ob, patient: patient}
}

func TestService_CreateScheduledPushDebitsCredit(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(t, clinicID, pushPatient(clinicID), 3)

	notification, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:    clinicID,
		PatientID:   f.patient.ID,
		ActorUserID: uuid.New(),
		Type:        enums.NotificationTypeAppointment,
		Message:     "  Your appointment is tomorrow at 9am.  ",
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if notification.Status != enums.NotificationStatusScheduled {
		t.Fatalf("expected scheduled status, got %s", notification.Status)
	}
	if notification.Message != "Your appointment is tomorrow at 9am." {
		t.Fatalf("expected trimmed message, got %q", notification.Message)
	}
	if notification.ScheduledFor == nil {
		t.Fatal("expected scheduled_for to default to now")
	}
	if f.ledger.debits != 1 || f.ledger.balance != 2 {
		t.Fatalf("expected one debit leaving balance 2, got debits=%d balance=%d", f.ledger.debits, f.ledger.balance)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventNotificationCreated {
		t.Fatalf("expected one created event, got %+v", f.outbox.events)
	}
}

func TestService_CreateImmediateSendSkipsLedger(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(t, clinicID, pushPatient(clinicID), 0)

	notification, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:    clinicID,
		PatientID:   f.patient.ID,
		ActorUserID: uuid.New(),
		Type:        enums.NotificationTypeAnnouncement,
		Kind:        enums.ScheduleKindImmediate,
		Message:     "Clinic closes early today.",
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if notification.Status != enums.NotificationStatusSent {
		t.Fatalf("expected sent status, got %s", notification.Status)
	}
	if notification.SentAt == nil {
		t.Fatal("expected sent_at to be stamped on immediate send")
	}
	if f.ledger.debits != 0 {
		t.Fatalf("immediate sends must not consume credits, got %d debits", f.ledger.debits)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventNotificationCreated {
		t.Fatalf("expected one created event, got %+v", f.outbox.events)
	}
	payload, ok := f.outbox.events[0].Data.(payloads.NotificationCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", f.outbox.events[0].Data)
	}
	if payload.Status != enums.NotificationStatusSent {
		t.Fatalf("expected event payload to carry sent status, got %s", payload.Status)
	}
}

func TestService_CreateNonPushSkipsLedger(t *testing.T) {
	clinicID := uuid.New()
	patient := pushPatient(clinicID)
	patient.PushToken = nil
	patient.AppInstalledAt = nil
	f := newFixture(t, clinicID, patient, 0)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:       clinicID,
		PatientID:      patient.ID,
		ActorUserID:    uuid.New(),
		Type:           enums.NotificationTypeReminder,
		DeliveryMethod: enums.DeliveryMethodSMS,
		Message:        "Remember your blood test.",
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if f.ledger.debits != 0 {
		t.Fatalf("sms notifications must not consume credits, got %d debits", f.ledger.debits)
	}
}

func TestService_CreateRejectsMissingPushDevice(t *testing.T) {
	clinicID := uuid.New()
	patient := pushPatient(clinicID)
	patient.PushToken = nil
	f := newFixture(t, clinicID, patient, 5)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:    clinicID,
		PatientID:   patient.ID,
		ActorUserID: uuid.New(),
		Type:        enums.NotificationTypeReminder,
		Message:     "hello",
	})
	if err == nil {
		t.Fatal("expected error for missing push device")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
	if f.ledger.debits != 0 {
		t.Fatal("no credit should be consumed on a rejected create")
	}
}

func TestService_CreateRejectsMissingAppInstall(t *testing.T) {
	clinicID := uuid.New()
	patient := pushPatient(clinicID)
	patient.AppInstalledAt = nil
	f := newFixture(t, clinicID, patient, 5)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:    clinicID,
		PatientID:   patient.ID,
		ActorUserID: uuid.New(),
		Type:        enums.NotificationTypeReminder,
		Message:     "hello",
	})
	if err == nil {
		t.Fatal("expected error for missing app install")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestService_CreateRejectsEmptyMessage(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(t, clinicID, pushPatient(clinicID), 5)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:    clinicID,
		PatientID:   f.patient.ID,
		ActorUserID: uuid.New(),
		Type:        enums.NotificationTypeReminder,
		Message:     "   ",
	})
	if err == nil {
		t.Fatal("expected error for blank message")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestService_CreateUnknownPatient(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(t, clinicID, pushPatient(clinicID), 5)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:    clinicID,
		PatientID:   uuid.New(),
		ActorUserID: uuid.New(),
		Type:        enums.NotificationTypeReminder,
		Message:     "hello",
	})
	if err == nil {
		t.Fatal("expected error for unknown patient")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %s", code)
	}
}

func TestService_CreateInsufficientBalance(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(t, clinicID, pushPatient(clinicID), 0)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ClinicID:    clinicID,
		PatientID:   f.patient.ID,
		ActorUserID: uuid.New(),
		Type:        enums.NotificationTypeReminder,
		Message:     "hello",
	})
	if err == nil {
		t.Fatal("expected error for exhausted balance")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
	if len(f.outbox.events) != 0 {
		t.Fatal("no event should be emitted when the transaction fails")
	}
}

func TestService_TransitionStampsTimestampOnce(t *testing.T) {
	clinicID := uuid.New()
	notificationID := uuid.New()
	current := &models.Notification{
		ID:             notificationID,
		ClinicID:       clinicID,
		PatientID:      uuid.New(),
		Status:         enums.NotificationStatusScheduled,
		DeliveryMethod: enums.DeliveryMethodPush,
	}

	var applied map[string]any
	var scopedClinic uuid.UUID
	f := newFixture(t, clinicID, nil, 0)
	f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
		copy := *current
		return &copy, nil
	}
	f.repo.updateStatusFn = func(ctx context.Context, cID, nID uuid.UUID, updates map[string]any) error {
		scopedClinic = cID
		applied = updates
		return nil
	}

	updated, err := f.svc.Transition(context.Background(), TransitionInput{
		ClinicID:       clinicID,
		NotificationID: notificationID,
		ActorUserID:    uuid.New(),
		Target:         enums.NotificationStatusSent,
	})
	if err != nil {
		t.Fatalf("unexpected transition error: %v", err)
	}
	if updated.Status != enums.NotificationStatusSent {
		t.Fatalf("expected sent status, got %s", updated.Status)
	}
	if updated.SentAt == nil {
		t.Fatal("expected sent_at to be stamped")
	}
	if _, ok := applied["sent_at"]; !ok {
		t.Fatal("expected sent_at column in update")
	}
	if scopedClinic != clinicID {
		t.Fatalf("expected update scoped to clinic %s, got %s", clinicID, scopedClinic)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventNotificationStatusChanged {
		t.Fatalf("expected one status changed event, got %+v", f.outbox.events)
	}
}

func TestService_TransitionSameStatusIsNoOp(t *testing.T) {
	clinicID := uuid.New()
	sentAt := time.Now().Add(-time.Minute)
	current := &models.Notification{
		ID:       uuid.New(),
		ClinicID: clinicID,
		Status:   enums.NotificationStatusSent,
		SentAt:   &sentAt,
	}

	f := newFixture(t, clinicID, nil, 0)
	f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
		copy := *current
		return &copy, nil
	}
	f.repo.updateStatusFn = func(ctx context.Context, cID, nID uuid.UUID, updates map[string]any) error {
		t.Fatal("no update should run for a same-status transition")
		return nil
	}

	updated, err := f.svc.Transition(context.Background(), TransitionInput{
		ClinicID:       clinicID,
		NotificationID: current.ID,
		Target:         enums.NotificationStatusSent,
	})
	if err != nil {
		t.Fatalf("unexpected transition error: %v", err)
	}
	if updated.SentAt == nil || !updated.SentAt.Equal(sentAt) {
		t.Fatal("existing sent_at must not change")
	}
	if len(f.outbox.events) != 0 {
		t.Fatal("no event should be emitted for a no-op transition")
	}
}

func TestService_TransitionRejectsIllegalTarget(t *testing.T) {
	cases := []struct {
		name string
		from enums.NotificationStatus
		to   enums.NotificationStatus
	}{
		{"scheduled to delivered", enums.NotificationStatusScheduled, enums.NotificationStatusDelivered},
		{"scheduled to read", enums.NotificationStatusScheduled, enums.NotificationStatusRead},
		{"sent to read", enums.NotificationStatusSent, enums.NotificationStatusRead},
		{"delivered to failed", enums.NotificationStatusDelivered, enums.NotificationStatusFailed},
		{"read to sent", enums.NotificationStatusRead, enums.NotificationStatusSent},
		{"failed to sent", enums.NotificationStatusFailed, enums.NotificationStatusSent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clinicID := uuid.New()
			f := newFixture(t, clinicID, nil, 0)
			f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
				return &models.Notification{ID: nID, ClinicID: cID, Status: tc.from}, nil
			}

			_, err := f.svc.Transition(context.Background(), TransitionInput{
				ClinicID:       clinicID,
				NotificationID: uuid.New(),
				Target:         tc.to,
			})
			if err == nil {
				t.Fatal("expected illegal transition to be rejected")
			}
			if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeStateConflict {
				t.Fatalf("expected state conflict, got %s", code)
			}
		})
	}
}

func TestService_TransitionToFailedRecordsReason(t *testing.T) {
	clinicID := uuid.New()
	reason := "device token rejected by APNs"

	var applied map[string]any
	f := newFixture(t, clinicID, nil, 0)
	f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
		return &models.Notification{ID: nID, ClinicID: cID, Status: enums.NotificationStatusSent}, nil
	}
	f.repo.updateStatusFn = func(ctx context.Context, cID, nID uuid.UUID, updates map[string]any) error {
		applied = updates
		return nil
	}

	updated, err := f.svc.Transition(context.Background(), TransitionInput{
		ClinicID:       clinicID,
		NotificationID: uuid.New(),
		Target:         enums.NotificationStatusFailed,
		FailureReason:  &reason,
	})
	if err != nil {
		t.Fatalf("unexpected transition error: %v", err)
	}
	if updated.FailureReason == nil || *updated.FailureReason != reason {
		t.Fatal("expected failure reason to be recorded")
	}
	if applied["failure_reason"] != reason {
		t.Fatalf("expected failure_reason column, got %+v", applied)
	}
	if _, ok := applied["failed_at"]; !ok {
		t.Fatal("expected failed_at column in update")
	}
}

func TestService_GetScopesLookupToClinic(t *testing.T) {
	clinicID := uuid.New()
	var gotClinic uuid.UUID
	f := newFixture(t, clinicID, nil, 0)
	f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
		gotClinic = cID
		return nil, nil
	}

	_, err := f.svc.Get(context.Background(), clinicID, uuid.New())
	if err == nil {
		t.Fatal("expected not found for a row the clinic cannot see")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %s", code)
	}
	if gotClinic != clinicID {
		t.Fatalf("expected lookup scoped to clinic %s, got %s", clinicID, gotClinic)
	}
}

func TestService_TransitionNotFound(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(t, clinicID, nil, 0)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		ClinicID:       clinicID,
		NotificationID: uuid.New(),
		Target:         enums.NotificationStatusSent,
	})
	if err == nil {
		t.Fatal("expected error for unknown notification")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %s", code)
	}
}

func TestService_CancelScheduledPushRefunds(t *testing.T) {
	clinicID := uuid.New()
	notificationID := uuid.New()

	f := newFixture(t, clinicID, nil, 2)
	f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
		return &models.Notification{
			ID:             nID,
			ClinicID:       cID,
			PatientID:      uuid.New(),
			Status:         enums.NotificationStatusScheduled,
			DeliveryMethod: enums.DeliveryMethodPush,
		}, nil
	}

	refunded, err := f.svc.Cancel(context.Background(), CancelInput{
		ClinicID:       clinicID,
		NotificationID: notificationID,
		ActorUserID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	if !refunded {
		t.Fatal("expected push cancellation to refund a credit")
	}
	if f.ledger.refunds != 1 || f.ledger.balance != 3 {
		t.Fatalf("expected one refund leaving balance 3, got refunds=%d balance=%d", f.ledger.refunds, f.ledger.balance)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventNotificationCanceled {
		t.Fatalf("expected one canceled event, got %+v", f.outbox.events)
	}
}

func TestService_CancelNonPushDoesNotRefund(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(t, clinicID, nil, 2)
	f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
		return &models.Notification{
			ID:             nID,
			ClinicID:       cID,
			Status:         enums.NotificationStatusScheduled,
			DeliveryMethod: enums.DeliveryMethodEmail,
		}, nil
	}

	refunded, err := f.svc.Cancel(context.Background(), CancelInput{
		ClinicID:       clinicID,
		NotificationID: uuid.New(),
		ActorUserID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	if refunded {
		t.Fatal("email notifications never charged a credit, so none should be refunded")
	}
	if f.ledger.refunds != 0 {
		t.Fatalf("expected no refunds, got %d", f.ledger.refunds)
	}
}

func TestService_CancelRejectsNonScheduled(t *testing.T) {
	for _, status := range []enums.NotificationStatus{
		enums.NotificationStatusSent,
		enums.NotificationStatusDelivered,
		enums.NotificationStatusRead,
		enums.NotificationStatusFailed,
	} {
		t.Run(status.String(), func(t *testing.T) {
			clinicID := uuid.New()
			f := newFixture(t, clinicID, nil, 2)
			f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
				return &models.Notification{
					ID:             nID,
					ClinicID:       cID,
					Status:         status,
					DeliveryMethod: enums.DeliveryMethodPush,
				}, nil
			}

			_, err := f.svc.Cancel(context.Background(), CancelInput{
				ClinicID:       clinicID,
				NotificationID: uuid.New(),
				ActorUserID:    uuid.New(),
			})
			if err == nil {
				t.Fatal("expected cancellation to be rejected")
			}
			if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %s", code)
			}
			if f.ledger.refunds != 0 {
				t.Fatal("no refund should occur for a rejected cancellation")
			}
		})
	}
}

// Balance conservation: after any mix of creates and cancels, the remaining
// balance equals the initial balance minus the notifications still scheduled.
func TestService_BalanceConservation(t *testing.T) {
	clinicID := uuid.New()
	patient := pushPatient(clinicID)
	f := newFixture(t, clinicID, patient, 10)

	var created []*models.Notification
	for i := 0; i < 4; i++ {
		n, err := f.svc.Create(context.Background(), CreateInput{
			ClinicID:    clinicID,
			PatientID:   patient.ID,
			ActorUserID: uuid.New(),
			Type:        enums.NotificationTypeReminder,
			Message:     "take your medication",
		})
		if err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
		created = append(created, n)
	}

	// Cancel two of the four.
	for _, n := range created[:2] {
		target := n
		f.repo.getFn = func(ctx context.Context, cID, nID uuid.UUID) (*models.Notification, error) {
			copy := *target
			return &copy, nil
		}
		if _, err := f.svc.Cancel(context.Background(), CancelInput{
			ClinicID:       clinicID,
			NotificationID: target.ID,
			ActorUserID:    uuid.New(),
		}); err != nil {
			t.Fatalf("unexpected cancel error: %v", err)
		}
	}

	if f.ledger.balance != 10-2 {
		t.Fatalf("expected balance 8 after 4 creates and 2 cancels, got %d", f.ledger.balance)
	}
}

func TestService_ListInvalidCursor(t *testing.T) {
	f := newFixture(t, uuid.New(), nil, 0)
	_, err := f.svc.List(context.Background(), ListParams{ClinicID: uuid.New(), Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestService_ListPaginates(t *testing.T) {
	clinicID := uuid.New()
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	f := newFixture(t, clinicID, nil, 0)
	f.repo.listFn = func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
		if params.ClinicID != clinicID {
			t.Fatalf("unexpected clinic id %s", params.ClinicID)
		}
		return []models.Notification{first}, &pagination.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
	}

	result, err := f.svc.List(context.Background(), ListParams{ClinicID: clinicID, Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := pagination.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor id %s got %s", second.ID, decoded.ID)
	}
}
