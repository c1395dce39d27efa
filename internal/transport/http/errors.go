package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/perchdesk/perchdesk/internal/domain"
)

const (
	codeValidation         = "validation_error"
	codeConflict           = "conflict"
	codeNotFound           = "not_found"
	codeUnauthenticated    = "unauthenticated"
	codeForbidden          = "forbidden"
	codeUnavailable        = "unavailable"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidTransition  = "invalid_transition"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error:  msg,
		Code:   code,
		Detail: detail,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// mapError translates a domain error into a status and machine code. Every
// taxonomy member has a fixed mapping; anything unrecognized is an opaque
// internal error.
func mapError(err error) (status int, code, msg string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, codeValidation, err.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, codeValidation, err.Error()
	case errors.Is(err, domain.ErrEmptyOrder):
		return http.StatusBadRequest, codeValidation, err.Error()
	case errors.Is(err, domain.ErrBookingConflict),
		errors.Is(err, domain.ErrDuplicateLabel),
		errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrTotalMismatch),
		errors.Is(err, domain.ErrDeskInMaintenance),
		errors.Is(err, domain.ErrDeskOccupiedNow),
		errors.Is(err, domain.ErrDeskHasBookings),
		errors.Is(err, domain.ErrBookingTerminal):
		return http.StatusConflict, codeConflict, err.Error()
	case errors.Is(err, domain.ErrComboNesting):
		return http.StatusBadRequest, codeValidation, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, codeInvalidTransition, err.Error()
	case errors.Is(err, domain.ErrDeskNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, codeNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, codeUnauthenticated, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, codeForbidden, err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, codeUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, codeInternalError, "internal error"
	}
}

// respondError writes the mapped error. Outside production the raw error
// text rides along as diagnostic detail for unexpected failures.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, code, msg := mapError(err)
	detail := ""
	if s.dev && code == codeInternalError {
		detail = err.Error()
	}
	writeError(w, status, code, msg, detail)
}
