package handlers

import (
	"net/http"

	"github.com/kiddoHope/steadysocial-sub000/internal/broker"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// StatusHandler reports engine readiness to the studio.
type StatusHandler struct {
	Broker *broker.Broker
}

// Status handles GET /v1/status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.StatusResponse{
		Ready:     h.Broker.Ready(),
		Model:     h.Broker.Model(),
		Progress:  h.Broker.Progress(),
		LastError: h.Broker.LastError(),
	})
}
