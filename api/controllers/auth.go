package controllers

import (
	"net/http"

	"github.com/clinicdesk/clinicdesk-backend/api/responses"
	"github.com/clinicdesk/clinicdesk-backend/api/validators"
	"github.com/clinicdesk/clinicdesk-backend/internal/auth"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

// AuthLogin wires the staff login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-CD-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}
