package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/logging"
)

const (
	// DefaultSteps is used when a request omits steps.
	DefaultSteps int64 = 10_000_000
	// DefaultRequestTimeout bounds one /integrate request.
	DefaultRequestTimeout = 2 * time.Minute

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Server serves integrations over HTTP.
type Server struct {
	addr           string
	factory        integration.Factory
	logger         logging.Logger
	metrics        *Metrics
	security       SecurityConfig
	requestTimeout time.Duration
	defaultSteps   int64
	maxWorkers     int
	httpServer     *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics shares an existing set of instruments.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSecurityConfig replaces DefaultSecurityConfig.
func WithSecurityConfig(c SecurityConfig) Option {
	return func(s *Server) { s.security = c }
}

// WithRequestTimeout bounds each /integrate request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.requestTimeout = d }
}

// WithDefaultSteps sets the step count used when a request omits it.
func WithDefaultSteps(n int64) Option {
	return func(s *Server) { s.defaultSteps = n }
}

// WithMaxWorkers caps the pool size granted to requests; 0 means hardware
// concurrency.
func WithMaxWorkers(n int) Option {
	return func(s *Server) { s.maxWorkers = n }
}

// New creates a server listening on addr.
func New(addr string, factory integration.Factory, opts ...Option) *Server {
	s := &Server{
		addr:           addr,
		factory:        factory,
		logger:         logging.NewZerologAdapter(zerolog.Nop()),
		security:       DefaultSecurityConfig(),
		requestTimeout: DefaultRequestTimeout,
		defaultSteps:   DefaultSteps,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/integrate", s.wrap(s.handleIntegrate))
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	return mux
}

func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.metricsMiddleware(h))
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", s.addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"strategies": s.factory.List(),
		"hardware":   integration.HardwareConcurrency(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	if s.logger != nil {
		s.logger.Debug("request rejected", logging.Int("status", status), logging.String("reason", msg))
	}
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Error("failed to encode response", err)
	}
}
