package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ForecastProvider exposes the forecast currently on the panel.
type ForecastProvider interface {
	Load() domain.Forecast
	Loaded() bool
}

// Server exposes health, readiness, metrics, and current forecast HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /forecast routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, forecasts ForecastProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /forecast", handleForecast(forecasts))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleForecast(forecasts ForecastProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !forecasts.Loaded() {
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no forecast loaded"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, forecasts.Load())
	}
}
