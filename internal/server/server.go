// Package server is the HTTP surface the SteadySocial studio front end
// talks to.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kiddoHope/steadysocial-sub000/internal/broker"
	"github.com/kiddoHope/steadysocial-sub000/internal/config"
	"github.com/kiddoHope/steadysocial-sub000/internal/extract"
	"github.com/kiddoHope/steadysocial-sub000/internal/memory"
)

// Server is the SteadySocial HTTP API server.
type Server struct {
	cfg       *config.Config
	http      *http.Server
	broker    *broker.Broker
	history   memory.Store
	extractor *extract.Extractor
}

// New wires handlers over the broker. history may be nil when persistence
// is disabled.
func New(cfg *config.Config, b *broker.Broker, history memory.Store) *Server {
	s := &Server{
		cfg:       cfg,
		broker:    b,
		history:   history,
		extractor: extract.New(),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: withLogging(withCORS(mux)),
	}
	return s
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.Info().Str("addr", s.http.Addr).Msg("steadysocial server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("server shutdown error")
		}
		return nil
	case err := <-errCh:
		return err
	}
}
