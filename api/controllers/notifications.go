package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk-backend/api/responses"
	"github.com/clinicdesk/clinicdesk-backend/api/validators"
	"github.com/clinicdesk/clinicdesk-backend/internal/notifications"
	"github.com/clinicdesk/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

type createNotificationRequest struct {
	PatientID      string     `json:"patientId" validate:"required,uuid"`
	Type           string     `json:"type" validate:"required"`
	Title          string     `json:"title" validate:"max=200"`
	Message        string     `json:"message" validate:"required"`
	DeliveryMethod string     `json:"deliveryMethod" validate:"omitempty,oneof=push sms email"`
	Kind           string     `json:"kind" validate:"omitempty,oneof=scheduled immediate"`
	ScheduledFor   *time.Time `json:"scheduledFor"`
}

type transitionNotificationRequest struct {
	Status        string  `json:"status" validate:"required"`
	FailureReason *string `json:"failureReason" validate:"omitempty,max=500"`
}

type cancelNotificationResponse struct {
	Canceled bool `json:"canceled"`
	Refunded bool `json:"refunded"`
}

// CreateNotification schedules or immediately sends a notification for a
// patient of the caller's clinic.
func CreateNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createNotificationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patientID, err := parsePathUUID(r, req.PatientID, "patient id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationType, err := enums.ParseNotificationType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
			return
		}

		input := notifications.CreateInput{
			ClinicID:     actor.ClinicID,
			PatientID:    patientID,
			ActorUserID:  actor.UserID,
			ActorRole:    actor.Role,
			Type:         notificationType,
			Title:        req.Title,
			Message:      req.Message,
			ScheduledFor: req.ScheduledFor,
		}
		if req.DeliveryMethod != "" {
			input.DeliveryMethod = enums.DeliveryMethod(req.DeliveryMethod)
		}
		if req.Kind != "" {
			input.Kind = enums.ScheduleKind(req.Kind)
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListNotifications returns paginated notifications for the caller's clinic.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := notifications.ListParams{ClinicID: actor.ClinicID}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			parsed, err := enums.ParseNotificationStatus(status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = &parsed
		}

		if typeFilter := strings.TrimSpace(r.URL.Query().Get("type")); typeFilter != "" {
			parsed, err := enums.ParseNotificationType(typeFilter)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			params.Type = &parsed
		}

		if patient := strings.TrimSpace(r.URL.Query().Get("patientId")); patient != "" {
			id, err := uuid.Parse(patient)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid patient id"))
				return
			}
			params.PatientID = &id
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetNotification returns a single notification owned by the caller's clinic.
func GetNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationID, err := parsePathUUID(r, chi.URLParam(r, "notificationId"), "notification id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notification, err := svc.Get(r.Context(), actor.ClinicID, notificationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notification)
	}
}

// TransitionNotification advances a notification through its lifecycle.
func TransitionNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationID, err := parsePathUUID(r, chi.URLParam(r, "notificationId"), "notification id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionNotificationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseNotificationStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		updated, err := svc.Transition(r.Context(), notifications.TransitionInput{
			ClinicID:       actor.ClinicID,
			NotificationID: notificationID,
			ActorUserID:    actor.UserID,
			ActorRole:      actor.Role,
			Target:         target,
			FailureReason:  req.FailureReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// CancelNotification deletes a still scheduled notification and refunds the
// push credit where one was consumed.
func CancelNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationID, err := parsePathUUID(r, chi.URLParam(r, "notificationId"), "notification id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refunded, err := svc.Cancel(r.Context(), notifications.CancelInput{
			ClinicID:       actor.ClinicID,
			NotificationID: notificationID,
			ActorUserID:    actor.UserID,
			ActorRole:      actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cancelNotificationResponse{Canceled: true, Refunded: refunded})
	}
}
