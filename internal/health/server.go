// Package health serves liveness, readiness and metrics endpoints for long-running trainers.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/logger"
)

// Checker reports whether a dependency is usable
type Checker interface {
	Check(ctx context.Context) error
}

// FilesCheck passes when every path exists
type FilesCheck []string

// Check stats each file
func (f FilesCheck) Check(ctx context.Context) error {
	for _, path := range f {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("artifact unavailable: %w", err)
		}
	}
	return nil
}

// RunInfo describes the last successful training run
type RunInfo struct {
	RunID        string    `json:"run_id"`
	ModelVersion string    `json:"model_version,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}

// HealthResponse is the body of /health and /live.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse is the body of /ready.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	LastRun  *RunInfo          `json:"last_run,omitempty"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        int
	Logger      *logrus.Logger
	Checks      map[string]Checker
	// Metrics, when set, is served at /metrics
	Metrics http.Handler
}

// Server answers probes until shut down
type Server struct {
	cfg    Config
	addr   string
	server *http.Server

	mu      sync.RWMutex
	lastRun *RunInfo
}

// NewServer creates a health server. Port falls back to HEALTH_PORT, then 8080.
func NewServer(cfg Config) *Server {
	port := ""
	if cfg.Port > 0 {
		port = strconv.Itoa(cfg.Port)
	} else if port = os.Getenv("HEALTH_PORT"); port == "" {
		port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Server{cfg: cfg, addr: ":" + port}
}

// MarkRun records a successful run, after which /ready may report ok.
func (s *Server) MarkRun(info RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = &info
}

// LastRun returns the last recorded run, or nil before the first one.
func (s *Server) LastRun() *RunInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil
	}
	info := *s.lastRun
	return &info
}

// Handler returns the probe routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	if s.cfg.Metrics != nil {
		mux.Handle("/metrics", s.cfg.Metrics)
	}
	return mux
}

// Start binds the port and serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log().WithFields(logrus.Fields{
		"addr":    s.addr,
		"service": s.cfg.ServiceName,
	}).Info("Health check server starting")

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log().WithError(err).Error("Health check server error")
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	return nil
}

// Shutdown stops the server, waiting up to five seconds for open requests.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.log().Info("Health check server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) log() *logrus.Entry {
	return s.cfg.Logger.WithField("component", "health")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.cfg.ServiceName})
}

// handleReady is ok once a run has succeeded and every check passes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := ReadyResponse{
		Status:  "ok",
		Service: s.cfg.ServiceName,
		LastRun: s.LastRun(),
		Checks:  make(map[string]string, len(s.cfg.Checks)+1),
	}

	if resp.LastRun == nil {
		resp.Status = "not_ready"
		resp.Checks["training"] = "no successful run yet"
	} else {
		resp.Checks["training"] = "ok"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	for name, checker := range s.cfg.Checks {
		if err := checker.Check(ctx); err != nil {
			resp.Status = "not_ready"
			resp.Checks[name] = fmt.Sprintf("error: %v", err)
			continue
		}
		resp.Checks[name] = "ok"
	}
	resp.Duration = time.Since(start).String()

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
