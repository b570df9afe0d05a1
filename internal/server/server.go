// Package server provides the loopback HTTP surface: the settings panel API,
// the status channel, the camera preview and a live frame feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/soulfree/internal/app"
	"github.com/ayusman/soulfree/internal/capture"
	"github.com/ayusman/soulfree/internal/config"
	"github.com/ayusman/soulfree/internal/journal"
	"github.com/ayusman/soulfree/internal/server/api"
)

// Source is the running application as seen by the server.
type Source interface {
	Status() string
	Snapshot() app.Snapshot
	SessionID() string
	Preview() (capture.Frame, error)
	OnFrame(fn func(app.Snapshot))
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Tunables  *config.Shared
	Journal   *journal.Journal
	Source    Source
}

// Server represents the HTTP server for the settings panel.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	frames *FramesHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Tunables != nil {
		configHandler := api.NewConfigHandler(s.config.Tunables)
		s.mux.Handle("/api/config", configHandler)
		s.mux.Handle("/api/config/", configHandler)
	}

	if s.config.Journal != nil {
		var current func() string
		if s.config.Source != nil {
			current = s.config.Source.SessionID
		}
		journalHandler := api.NewJournalHandler(s.config.Journal, current)
		s.mux.Handle("/api/journal", journalHandler)
		s.mux.Handle("/api/journal/", journalHandler)
	}

	if s.config.Source != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Source))

		s.frames = NewFramesHandler()
		s.config.Source.OnFrame(s.frames.Broadcast)
		s.mux.Handle("/api/frames", s.frames)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.config.Source.Snapshot()
	writeJSON(w, map[string]interface{}{
		"status":   s.config.Source.Status(),
		"tracking": snap.Tracking,
		"session":  snap.Session,
	})
}

// handleState handles GET /api/state with the latest tick outcome.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.config.Source.Snapshot())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.frames != nil {
		s.frames.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
