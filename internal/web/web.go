// Package web serves run status and the latest rendered document preview.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/config"
	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
)

// RunStatus summarizes the most recent pipeline run.
type RunStatus struct {
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
	Pages     int       `json:"pages"`
	Events    int       `json:"events"`
	Findings  int       `json:"findings"`
	Uploaded  bool      `json:"uploaded"`
}

// Server exposes /healthz, /api/status, and /preview (the latest HTML).
type Server struct {
	cfg         *config.Config
	mux         *http.ServeMux
	previewPath string

	mu     sync.RWMutex
	status RunStatus
}

func NewServer(cfg *config.Config, previewPath string) *Server {
	s := &Server{
		cfg:         cfg,
		mux:         http.NewServeMux(),
		previewPath: previewPath,
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /preview", s.handlePreview)
	return s
}

// SetStatus records the outcome of a pipeline run.
func (s *Server) SetStatus(st RunStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Handler returns the routed handler, wrapped in basic auth when
// configured. /healthz is always exempt.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Serve runs the HTTP server until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		appLog.Warn("web: status encode failed", "err", err)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.previewPath == "" {
		http.Error(w, "no preview rendered yet", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, s.previewPath)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.BasicAuth.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.BasicAuth.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="dashboard"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
