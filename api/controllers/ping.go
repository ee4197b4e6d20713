package controllers

import (
	"net/http"

	"github.com/clinicdesk/clinicdesk-backend/api/middleware"
	"github.com/clinicdesk/clinicdesk-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if clinic := middleware.ClinicIDFromContext(r.Context()); clinic != "" {
			payload["clinic_id"] = clinic
		}
		responses.WriteSuccess(w, payload)
	}
}
