package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/kiddoHope/steadysocial-sub000/internal/extract"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// ExtractHandler fetches article text for use as auxiliary canvas material.
type ExtractHandler struct {
	Extractor *extract.Extractor
}

// Extract handles POST /v1/extract.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req api.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "invalid_request", "a valid http(s) url is required")
		return
	}

	article, err := h.Extractor.Extract(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadGateway, "extract_error", err.Error())
		return
	}

	writeJSON(w, api.ExtractResponse{
		Title: article.Title,
		Text:  article.Text,
	})
}
