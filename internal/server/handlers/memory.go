package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kiddoHope/steadysocial-sub000/internal/memory"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// MemoryHandler exposes generation history over HTTP.
type MemoryHandler struct {
	Store memory.Store
}

// Search handles POST /v1/memory/search.
func (h *MemoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req api.MemorySearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
		return
	}

	results, err := h.Store.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
		return
	}

	apiResults := make([]api.MemorySearchResult, len(results))
	for i, sr := range results {
		apiResults[i] = api.MemorySearchResult{
			Entry:         toAPIEntry(sr.Entry),
			SemanticScore: sr.SemanticScore,
			KeywordScore:  sr.KeywordScore,
			CombinedScore: sr.CombinedScore,
		}
	}
	writeJSON(w, api.MemorySearchResponse{Results: apiResults})
}

// Store handles POST /v1/memory/store.
func (h *MemoryHandler) StoreEntry(w http.ResponseWriter, r *http.Request) {
	var req api.MemoryStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	entry := memory.Entry{
		Kind:     req.Kind,
		Prompt:   req.Prompt,
		Output:   req.Output,
		CanvasID: req.CanvasID,
	}
	if err := h.Store.Add(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
		return
	}
	writeJSON(w, api.MemoryStoreResponse{ID: entry.ID})
}

// List handles GET /v1/memory/list.
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	entries, err := h.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
		return
	}

	apiEntries := make([]api.MemoryEntry, len(entries))
	for i, e := range entries {
		apiEntries[i] = toAPIEntry(e)
	}
	writeJSON(w, api.MemoryListResponse{
		Entries: apiEntries,
		Total:   h.Store.Count(),
	})
}

// Delete handles DELETE /v1/memory/{id}.
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "entry id required")
		return
	}

	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}

// Clear handles DELETE /v1/memory.
func (h *MemoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}

// Count handles GET /v1/memory/count.
func (h *MemoryHandler) Count(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.MemoryCountResponse{Count: h.Store.Count()})
}

func toAPIEntry(e memory.Entry) api.MemoryEntry {
	return api.MemoryEntry{
		ID:        e.ID,
		Kind:      e.Kind,
		Prompt:    e.Prompt,
		Output:    e.Output,
		Timestamp: e.Timestamp,
		CanvasID:  e.CanvasID,
	}
}
