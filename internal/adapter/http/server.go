package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/couchcryptid/openwater-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// StoreSource returns the most recent Reading Store, or nil before the
// first scan.
type StoreSource interface {
	Latest() *domain.Store
}

// Server exposes health, readiness, metrics, and reading query endpoints.
type Server struct {
	httpServer *http.Server
	stores     StoreSource
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /readings routes.
func NewServer(addr string, ready ReadinessChecker, stores StoreSource, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		stores:  stores,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /readings", s.handleReadings)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type readingJSON struct {
	Location     string      `json:"location"`
	Published    string      `json:"published"`
	Temperature  float64     `json:"temperature"`
	Unit         domain.Unit `json:"unit"`
	TemperatureF float64     `json:"temperature_f"`
}

type readingsResponse struct {
	ScannedAt time.Time     `json:"scanned_at"`
	States    []string      `json:"states,omitempty"`
	Unit      domain.Unit   `json:"unit"`
	Count     int           `json:"count"`
	Readings  []readingJSON `json:"readings"`
}

// handleReadings serves GET /readings?state=ME&state=CA&unit=C. Without a
// state parameter every reading is returned.
func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	unit, err := domain.ParseUnit(q.Get("unit"))
	if err != nil {
		s.badRequest(w, err)
		return
	}

	states := make([]string, 0, len(q["state"]))
	for _, code := range q["state"] {
		norm, err := domain.NormalizeStateCode(code)
		if err != nil {
			s.badRequest(w, err)
			return
		}
		states = append(states, norm)
	}

	store := s.stores.Latest()
	if store == nil {
		s.metrics.ReadingQueries.WithLabelValues("unavailable").Inc()
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no feed scan has completed yet"})
		return
	}

	var readings []domain.Reading
	if len(states) == 0 {
		readings = store.All()
	} else {
		readings = store.ForStates(states...)
	}

	resp := readingsResponse{
		ScannedAt: store.ScannedAt().UTC(),
		States:    states,
		Unit:      unit,
		Count:     len(readings),
		Readings:  make([]readingJSON, 0, len(readings)),
	}
	for _, rd := range readings {
		resp.Readings = append(resp.Readings, readingJSON{
			Location:     rd.Location,
			Published:    rd.Published,
			Temperature:  rd.In(unit),
			Unit:         unit,
			TemperatureF: rd.TemperatureF,
		})
	}

	s.metrics.ReadingQueries.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.metrics.ReadingQueries.WithLabelValues("bad_request").Inc()
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
