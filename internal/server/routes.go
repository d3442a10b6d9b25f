package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kiddoHope/steadysocial-sub000/internal/server/handlers"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", handlers.Health)

	status := &handlers.StatusHandler{Broker: s.broker}
	mux.HandleFunc("GET /v1/status", status.Status)

	canvas := &handlers.CanvasHandler{Broker: s.broker, History: s.history}
	mux.HandleFunc("POST /v1/canvas/items", canvas.Items)
	mux.HandleFunc("POST /v1/canvas/adapt", canvas.Adapt)
	mux.HandleFunc("POST /v1/canvas/suggest", canvas.Suggest)

	chat := &handlers.ChatHandler{Broker: s.broker, History: s.history}
	mux.HandleFunc("POST /v1/chat", chat.Chat)

	ext := &handlers.ExtractHandler{Extractor: s.extractor}
	mux.HandleFunc("POST /v1/extract", ext.Extract)

	// History endpoints are only live when a store is configured.
	if s.history != nil {
		mem := &handlers.MemoryHandler{Store: s.history}
		mux.HandleFunc("POST /v1/memory/search", mem.Search)
		mux.HandleFunc("POST /v1/memory/store", mem.StoreEntry)
		mux.HandleFunc("GET /v1/memory/list", mem.List)
		mux.HandleFunc("DELETE /v1/memory/{id}", mem.Delete)
		mux.HandleFunc("DELETE /v1/memory", mem.Clear)
		mux.HandleFunc("GET /v1/memory/count", mem.Count)
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
