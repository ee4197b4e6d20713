package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/clinicdesk/clinicdesk-backend/api/responses"
	"github.com/clinicdesk/clinicdesk-backend/api/validators"
	"github.com/clinicdesk/clinicdesk-backend/internal/ledger"
	"github.com/clinicdesk/clinicdesk-backend/pkg/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type topUpRequest struct {
	Amount int             `json:"amount" validate:"required,gt=0,lte=10000"`
	Note   json.RawMessage `json:"note"`
}

type balanceResponse struct {
	ClinicID string `json:"clinicId"`
	Balance  int    `json:"balance"`
}

// ClinicBalance returns the clinic's current push notification credit balance.
func ClinicBalance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), actor.ClinicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balanceResponse{ClinicID: actor.ClinicID.String(), Balance: balance})
	}
}

// CreditHistory lists the clinic's credit events, newest first.
func CreditHistory(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.History(r.Context(), actor.ClinicID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}

// TopUpCredits adds purchased push credits to the clinic balance. The route
// restricts this to owner and admin roles.
func TopUpCredits(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := resolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req topUpRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.TopUp(r.Context(), ledger.TopUpInput{
			ClinicID:    actor.ClinicID,
			ActorUserID: actor.UserID,
			Amount:      req.Amount,
			Metadata:    req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}
