package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kiddoHope/steadysocial-sub000/internal/broker"
	"github.com/kiddoHope/steadysocial-sub000/internal/memory"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// CanvasHandler serves the canvas generation endpoints. History is optional;
// when set, successful generations are recorded for later recall.
type CanvasHandler struct {
	Broker  *broker.Broker
	History memory.Store
}

// Items handles POST /v1/canvas/items.
func (h *CanvasHandler) Items(w http.ResponseWriter, r *http.Request) {
	var req api.CanvasItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	items, err := h.Broker.GenerateInitialItems(r.Context(), broker.InitialItemsRequest{
		Prompt:        req.Prompt,
		AuxiliaryText: req.AuxiliaryText,
		Tone:          req.Tone,
		Count:         req.Count,
	})
	if err != nil {
		writeBrokerError(w, err)
		return
	}

	h.record(r, memory.Entry{Kind: memory.KindInitialItems, Prompt: req.Prompt, Output: joinItems(items)})
	writeJSON(w, api.CanvasItemsResponse{Items: items})
}

// Adapt handles POST /v1/canvas/adapt.
func (h *CanvasHandler) Adapt(w http.ResponseWriter, r *http.Request) {
	var req api.AdaptItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	text, err := h.Broker.AdaptItem(r.Context(), broker.AdaptItemRequest{
		ItemID:        req.ItemID,
		Text:          req.Text,
		Platform:      req.Platform,
		Tone:          req.Tone,
		Prompt:        req.Prompt,
		AuxiliaryText: req.AuxiliaryText,
	})
	if err != nil {
		writeBrokerError(w, err)
		return
	}

	h.record(r, memory.Entry{Kind: memory.KindAdapt, Prompt: req.Text, Output: text, CanvasID: req.ItemID})
	writeJSON(w, api.AdaptItemResponse{
		ItemID:   req.ItemID,
		Platform: req.Platform,
		Text:     text,
	})
}

// Suggest handles POST /v1/canvas/suggest.
func (h *CanvasHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req api.SuggestPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	prompt, err := h.Broker.SuggestPrompt(r.Context(), req.Title)
	if err != nil {
		writeBrokerError(w, err)
		return
	}

	h.record(r, memory.Entry{Kind: memory.KindSuggest, Prompt: req.Title, Output: prompt})
	writeJSON(w, api.SuggestPromptResponse{Prompt: prompt})
}

// record stores a history entry best effort; generation already succeeded.
func (h *CanvasHandler) record(r *http.Request, e memory.Entry) {
	if h.History == nil {
		return
	}
	if err := h.History.Add(r.Context(), e); err != nil {
		log.Warn().Err(err).Str("kind", e.Kind).Msg("failed to record generation history")
	}
}

func joinItems(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += "\n\n"
		}
		out += it
	}
	return out
}
