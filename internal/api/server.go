// Package api exposes the trajectory query endpoints over HTTP. All
// responses are JSON; handlers are stateless and read from the immutable
// dataset snapshot held by the oem store.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/owens3364/coe332midterm/internal/geocode"
	"github.com/owens3364/coe332midterm/internal/health"
	"github.com/owens3364/coe332midterm/internal/httputil"
	"github.com/owens3364/coe332midterm/internal/metrics"
	"github.com/owens3364/coe332midterm/internal/oem"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	store      *oem.Store
	geocoder   geocode.Geocoder // nil when disabled
	logger     *slog.Logger
}

// Options configures optional server behavior.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TrustProxy   bool
	Geocoder     geocode.Geocoder
}

// NewServer creates a configured HTTP server serving the trajectory API.
func NewServer(addr string, store *oem.Store, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		store:    store,
		geocoder: opts.Geocoder,
		logger:   logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() bool {
		return store.Peek() != nil
	}))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /comment", s.handleComments)
	mux.HandleFunc("GET /header", s.handleHeader)
	mux.HandleFunc("GET /metadata", s.handleMetadata)
	mux.HandleFunc("GET /epochs", s.handleEpochs)
	mux.HandleFunc("GET /epochs/{epoch}", s.handleEpoch)
	mux.HandleFunc("GET /epochs/{epoch}/speed", s.handleEpochSpeed)
	mux.HandleFunc("GET /epochs/{epoch}/location", s.handleEpochLocation)
	mux.HandleFunc("GET /now", s.handleNow)

	// Middleware chain: metrics -> logging -> mux.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger, opts.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       orDefault(opts.ReadTimeout, 10*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      orDefault(opts.WriteTimeout, 30*time.Second),
		IdleTimeout:       orDefault(opts.IdleTimeout, 120*time.Second),
	}

	return s
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Handler returns the full middleware-wrapped handler, useful for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// writeJSON serializes v with the JSON content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the uniform JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDataError maps loader failures onto upstream-failure status codes:
// 502 when the document could not be retrieved, 500 when it was malformed.
func (s *Server) writeDataError(w http.ResponseWriter, err error) {
	var fe *oem.FetchError
	var pe *oem.ParseError
	switch {
	case errors.As(err, &fe):
		s.logger.Error("upstream fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "NASA trajectory data unavailable; try again later")
	case errors.As(err, &pe):
		s.logger.Error("upstream document malformed", "error", err)
		writeError(w, http.StatusInternalServerError, "NASA trajectory data could not be parsed")
	default:
		s.logger.Error("dataset load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error loading trajectory data")
	}
}

// probePath returns true for paths that should log at DEBUG instead of INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"client_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
