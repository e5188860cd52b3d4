package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeMissingRequiredField = "missing_required_field"
	codeUnauthorized         = "unauthorized"
	codeForbidden            = "forbidden"
	codeInvalidID            = "invalid_id"
	codeInvalidDiscount      = "invalid_discount_type"
	codeInvalidDateRange     = "invalid_date_range"
	codeTicketUnavailable    = "ticket_unavailable"
	codeHoldInvalid          = "hold_invalid"
	codeInvalidTicketState   = "invalid_ticket_state"
	codeSeatTaken            = "seat_taken"
	codeTripFull             = "trip_full"
	codeNoSeatsAvailable     = "no_seats_available"
	codeAlreadyTerminal      = "booking_already_terminal"
	codeDuplicateTrip        = "duplicate_trip"
	codeRefundFailed         = "refund_failed"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the engine's error taxonomy to stable client-facing
// codes and statuses. Anything outside the taxonomy is an internal error.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidDiscount):
		writeError(w, http.StatusBadRequest, codeInvalidDiscount, err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, codeInvalidDateRange, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrTicketUnavailable):
		writeError(w, http.StatusConflict, codeTicketUnavailable, err.Error())
	case errors.Is(err, domain.ErrHoldInvalid):
		writeError(w, http.StatusConflict, codeHoldInvalid, err.Error())
	case errors.Is(err, domain.ErrInvalidTicketState):
		writeError(w, http.StatusConflict, codeInvalidTicketState, err.Error())
	case errors.Is(err, domain.ErrSeatTaken):
		writeError(w, http.StatusConflict, codeSeatTaken, err.Error())
	case errors.Is(err, domain.ErrTripFull):
		writeError(w, http.StatusConflict, codeTripFull, err.Error())
	case errors.Is(err, domain.ErrNoSeatsAvailable):
		writeError(w, http.StatusConflict, codeNoSeatsAvailable, err.Error())
	case errors.Is(err, domain.ErrAlreadyTerminal):
		writeError(w, http.StatusConflict, codeAlreadyTerminal, err.Error())
	case errors.Is(err, domain.ErrDuplicateTrip):
		writeError(w, http.StatusConflict, codeDuplicateTrip, err.Error())
	case errors.Is(err, domain.ErrRefundFailed):
		writeError(w, http.StatusBadGateway, codeRefundFailed, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
