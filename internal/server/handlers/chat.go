package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kiddoHope/steadysocial-sub000/internal/broker"
	"github.com/kiddoHope/steadysocial-sub000/internal/memory"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// ChatHandler serves the assistant chat endpoint, streaming or not.
type ChatHandler struct {
	Broker  *broker.Broker
	History memory.Store
}

// chatEvent is one SSE payload on a streaming chat response. Deltas arrive
// first; the closing event carries Done plus the authoritative full text,
// which replaces whatever the deltas added up to.
type chatEvent struct {
	Delta string `json:"delta,omitempty"`
	Text  string `json:"text,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// Chat handles POST /v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stream, err := h.Broker.Chat(r.Context(), req.Message, req.History)
	if err != nil {
		writeBrokerError(w, err)
		return
	}

	if req.Stream {
		h.streamChat(w, r, req, stream)
		return
	}

	text, err := stream.Wait(r.Context())
	if err != nil {
		h.Broker.Cancel(stream.RequestID())
		writeBrokerError(w, err)
		return
	}

	h.record(r, req.Message, text)
	writeJSON(w, api.ChatResponse{Text: text})
}

func (h *ChatHandler) streamChat(w http.ResponseWriter, r *http.Request, req api.ChatRequest, stream *broker.ChatStream) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case frag, ok := <-stream.Fragments():
			if !ok {
				text, err := stream.Wait(r.Context())
				if err != nil {
					writeSSE(w, flusher, canFlush, chatEvent{Done: true, Error: err.Error()})
					return
				}
				h.record(r, req.Message, text)
				writeSSE(w, flusher, canFlush, chatEvent{Done: true, Text: text})
				return
			}
			writeSSE(w, flusher, canFlush, chatEvent{Delta: frag})

		case <-r.Context().Done():
			h.Broker.Cancel(stream.RequestID())
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, canFlush bool, ev chatEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	if canFlush {
		flusher.Flush()
	}
}

func (h *ChatHandler) record(r *http.Request, message, reply string) {
	if h.History == nil {
		return
	}
	e := memory.Entry{Kind: memory.KindChat, Prompt: message, Output: reply}
	if err := h.History.Add(r.Context(), e); err != nil {
		log.Warn().Err(err).Msg("failed to record chat history")
	}
}
