package middleware

import (
	"net/http"

	"github.com/clinicdesk/clinicdesk-backend/api/responses"
	pkgerrors "github.com/clinicdesk/clinicdesk-backend/pkg/errors"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

// ClinicContext is the tenant guard. Every route behind it requires a clinic
// bound to the caller's token; without one nothing downstream executes.
func ClinicContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ClinicIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "clinic context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
