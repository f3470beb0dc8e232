// Package remote exposes a running playback over local HTTP so a phone or a
// second terminal can pause, skip or watch the timer.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/fakeyudi/intervals/internal/plan"
	"github.com/fakeyudi/intervals/internal/playback"
)

// Controller is the part of a playback controller the API drives.
type Controller interface {
	Display() playback.Display
	Steps() []plan.Step
	Start() error
	Pause()
	Resume()
	Skip()
	End()
	Subscribe(buffer int) <-chan playback.Update
	Unsubscribe(ch <-chan playback.Update)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	ctl    Controller
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(ctl Controller, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		ctl:    ctl,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/plan", s.handlePlan)
		r.Get("/events", s.handleEvents)
		r.Get("/ws", s.handleSocket)
		r.Post("/start", s.handleStart)
		r.Post("/pause", s.command(s.ctl.Pause))
		r.Post("/resume", s.command(s.ctl.Resume))
		r.Post("/skip", s.command(s.ctl.Skip))
		r.Post("/end", s.command(s.ctl.End))
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Display())
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"steps": s.ctl.Steps()})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.ctl.Start(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, playback.ErrEmptyPlan) {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.ctl.Display())
}

// command wraps a controller command. Commands that do not apply to the
// current state are ignored, so the response is always the resulting state.
func (s *Server) command(op func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op()
		writeJSON(w, http.StatusOK, s.ctl.Display())
	}
}

// handleEvents streams updates as server-sent events until the client goes
// away or the run is closed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}
	updates := s.ctl.Subscribe(16)
	defer s.ctl.Unsubscribe(updates)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	send := func(v any) bool {
		data, err := json.Marshal(v)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(playback.Update{Display: s.ctl.Display()}) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case u, ok := <-updates:
			if !ok || !send(u) {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Serve listens on addr and serves h until ctx is cancelled, then shuts the
// server down gracefully. ready, when non-nil, receives the bound address.
func Serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	if ready != nil {
		ready(listener.Addr())
	}
	log.Info("remote control listening", "addr", listener.Addr().String())

	httpSrv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("remote control stopped")
	return nil
}
