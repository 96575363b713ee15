// Package server exposes the schedule over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/julianstephens/confsched/internal/attachments"
	"github.com/julianstephens/confsched/internal/config"
	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/schedule"
	"github.com/julianstephens/confsched/internal/validation"
)

// Server provides the schedule API, outline downloads and live updates.
type Server struct {
	cfg       *config.Config
	svc       *schedule.Service
	files     *attachments.Manager
	validator *validation.Validator
	hub       *Hub
	mux       *http.ServeMux
}

// NewServer constructs a new Server. hub may be nil to disable /ws.
func NewServer(cfg *config.Config, svc *schedule.Service, files *attachments.Manager, hub *Hub) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:       cfg,
		svc:       svc,
		files:     files,
		validator: validation.New(files),
		hub:       hub,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the router wrapped in the server middleware.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		logger.Info("HTTP basic auth enabled")
		h = s.basicAuthMiddleware(h)
	}
	h = corsMiddleware(h)
	return requestLogMiddleware(h)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/schedule", s.handleGetSchedule)
	s.mux.HandleFunc("POST /api/schedule/day", s.handleAddDay)
	s.mux.HandleFunc("DELETE /api/schedule/day/{dayID}", s.handleDeleteDay)
	s.mux.HandleFunc("POST /api/schedule/event", s.handleAddEvent)
	s.mux.HandleFunc("PUT /api/schedule/event/{dayID}/{eventID}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/schedule/event/{dayID}/{eventID}", s.handleDeleteEvent)
	s.mux.HandleFunc("POST /api/schedule/event/{dayID}/{eventID}/outline", s.handleUploadOutline)
	s.mux.HandleFunc("POST /api/schedule/initialize", s.handleInitialize)
	s.mux.HandleFunc("GET /api/validate", s.handleValidate)

	s.mux.HandleFunc("GET "+constants.OutlinesURLPrefix+"{eventID}/{file}", s.handleOutline)

	if s.hub != nil {
		s.mux.Handle("GET /ws", s.hub)
	}
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      constants.ServerWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "listen", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe binds cfg.Listen and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}
