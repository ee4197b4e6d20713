package controllers

import (
	"net/http"

	"github.com/clinicdesk/clinicdesk-backend/api/responses"
	"github.com/clinicdesk/clinicdesk-backend/api/validators"
	"github.com/clinicdesk/clinicdesk-backend/internal/clinics"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

type updateTimezoneRequest struct {
	Timezone string `json:"timezone" validate:"required,max=64"`
}

// GetClinic returns the caller's clinic profile.
func GetClinic(svc clinics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clinic, err := svc.Get(r.Context(), actor.ClinicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, clinic)
	}
}

// UpdateClinicTimezone sets the reporting timezone used for local-day stats.
func UpdateClinicTimezone(svc clinics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateTimezoneRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetTimezone(r.Context(), actor.ClinicID, req.Timezone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"timezone": req.Timezone})
	}
}
