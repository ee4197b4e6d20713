package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/clinicdesk-backend/api/responses"
	"github.com/clinicdesk/clinicdesk-backend/api/validators"
	"github.com/clinicdesk/clinicdesk-backend/internal/patients"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

type createPatientRequest struct {
	FirstName   string     `json:"firstName" validate:"required,max=100"`
	LastName    string     `json:"lastName" validate:"required,max=100"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	Phone       *string    `json:"phone" validate:"omitempty,max=32"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

type registerDeviceRequest struct {
	PushToken string `json:"pushToken" validate:"required,max=512"`
}

// CreatePatient adds a patient to the caller's clinic directory.
func CreatePatient(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createPatientRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.Create(r.Context(), patients.CreatePatientInput{
			ClinicID:    actor.ClinicID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			DateOfBirth: req.DateOfBirth,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, patient)
	}
}

// ListPatients returns the clinic directory, newest first.
func ListPatients(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := patients.ListParams{ClinicID: actor.ClinicID}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		if active := strings.TrimSpace(r.URL.Query().Get("activeOnly")); active != "" {
			parsed, err := strconv.ParseBool(active)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "activeOnly must be a boolean"))
				return
			}
			params.ActiveOnly = parsed
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetPatient returns a patient owned by the caller's clinic.
func GetPatient(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patientID, err := parsePathUUID(r, chi.URLParam(r, "patientId"), "patient id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.Get(r.Context(), actor.ClinicID, patientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, patient)
	}
}

// RegisterPatientDevice stores the patient's push token and marks the app
// installed.
func RegisterPatientDevice(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patientID, err := parsePathUUID(r, chi.URLParam(r, "patientId"), "patient id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerDeviceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RegisterDevice(r.Context(), actor.ClinicID, patientID, req.PushToken); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "registered"})
	}
}

// UnregisterPatientDevice clears the patient's push token.
func UnregisterPatientDevice(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patientID, err := parsePathUUID(r, chi.URLParam(r, "patientId"), "patient id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UnregisterDevice(r.Context(), actor.ClinicID, patientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unregistered"})
	}
}
