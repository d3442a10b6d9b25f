package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kiddoHope/steadysocial-sub000/internal/broker"
	"github.com/kiddoHope/steadysocial-sub000/internal/normalize"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: api.ErrorDetail{
			Message: message,
			Type:    errType,
		},
	})
}

// writeBrokerError maps broker error kinds onto HTTP statuses.
func writeBrokerError(w http.ResponseWriter, err error) {
	var perr *normalize.ParseError
	var ee *broker.EngineError

	switch {
	case errors.Is(err, broker.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
	case errors.Is(err, broker.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, broker.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "duplicate_request", err.Error())
	case errors.Is(err, broker.ErrTimedOut):
		writeError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	case errors.As(err, &perr):
		writeError(w, http.StatusBadGateway, "parse_failure", err.Error())
	case errors.As(err, &ee):
		writeError(w, http.StatusBadGateway, "engine_fault", err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusRequestTimeout, "canceled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
