// Package server provides the local HTTP control surface of the head tracker.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/headtrack/internal/app"
	"github.com/ayusman/headtrack/internal/server/api"
	"github.com/ayusman/headtrack/internal/store"
)

// Tracker is the part of app.App the server drives.
type Tracker interface {
	Settings() app.Settings
	UpdateSettings(fn func(app.Settings) app.Settings) app.Settings
	Status() app.Status
	PreviewJPEG() ([]byte, error)
}

// Config holds configuration options for the HTTP server.
type Config struct {
	StaticDir string
	Store     *store.Store
	Tracker   Tracker

	// StreamInterval paces the MJPEG stream and the pose websocket.
	// Zero means DefaultStreamInterval.
	StreamInterval time.Duration
}

// DefaultStreamInterval is roughly 15 updates per second.
const DefaultStreamInterval = 66 * time.Millisecond

// Server is the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	cancel context.CancelFunc
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.StreamInterval <= 0 {
		config.StreamInterval = DefaultStreamInterval
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		cancel: func() {},
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Tracker != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel

		s.mux.Handle("/api/pose", NewPoseHandler(s.config.Tracker))
		s.mux.Handle("/api/pose/ws", NewPoseStream(ctx, s.config.Tracker, s.config.StreamInterval))
		s.mux.Handle("/api/settings", NewSettingsHandler(s.config.Tracker))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Tracker, s.config.StreamInterval))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Tracker != nil {
		st := s.config.Tracker.Status()
		response["tracking"] = st.Tracking
		response["fps"] = st.FPS
	}

	writeJSON(w, http.StatusOK, response)
}

// Close stops the background pose broadcaster.
func (s *Server) Close() error {
	s.cancel()
	return nil
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
