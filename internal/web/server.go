// Package web serves the operator dashboard over HTTP: a server-rendered
// view of the dashboard controller plus a JSON state endpoint and form
// actions. Presentation is deliberately bare; the controller owns all
// behavior.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/samodrei/telecaller/pkg/telecall"
)

type Server struct {
	dash    *telecall.Dashboard
	logger  *slog.Logger
	mux     *http.ServeMux
	timeout time.Duration
}

func New(dash *telecall.Dashboard, logger *slog.Logger, requestTimeout time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		dash:    dash,
		logger:  logger,
		mux:     http.NewServeMux(),
		timeout: requestTimeout,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("POST /calls", s.handlePlaceCall)
	s.mux.HandleFunc("POST /form/open", s.handleOpenForm)
	s.mux.HandleFunc("POST /form/close", s.handleCloseForm)
	s.mux.HandleFunc("POST /automation/toggle", s.handleToggleAutomation)
	s.mux.HandleFunc("POST /logs/sort", s.handleSort)
	s.mux.HandleFunc("POST /recordings/open", s.handleOpenRecording)
	s.mux.HandleFunc("POST /recordings/close", s.handleCloseRecording)
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = recoverer(s.logger, h)
	h = accessLog(s.logger, h)
	return h
}

func recoverer(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic", "panic", v)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Info("request",
			"request_id", "req_"+randHex(10),
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func randHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
