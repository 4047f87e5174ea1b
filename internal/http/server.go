// Package http exposes the JSON API: invoice, expense and client CRUD,
// report overviews, export scheduling and VAT settings.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gestionale/internal/observability/metrics"
	"gestionale/internal/services"
)

// Pinger reports storage liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the server needs. Publisher and Pinger may be nil;
// the server degrades gracefully (exports rejected, readiness always ok).
type Deps struct {
	Invoices  *services.InvoiceService
	Expenses  *services.ExpenseService
	Clients   *services.ClientService
	Settings  *services.SettingsService
	Reports   *services.ReportService
	Publisher services.TaskPublisher
	Pinger    Pinger
}

// Server wraps the HTTP server with rate limiting, security headers and
// request logging around the API handlers.
type Server struct {
	httpServer   *http.Server
	deps         Deps
	limiter      *rateLimiter
	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		deps:    deps,
		limiter: newRateLimiter(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/invoices", s.handleInvoices)
	mux.HandleFunc("/api/invoices/", s.handleInvoiceByID)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/api/clients", s.handleClients)
	mux.HandleFunc("/api/clients/", s.handleClientByID)
	mux.HandleFunc("/api/reports/overview", s.handleReportOverview)
	mux.HandleFunc("/api/reports/expenses", s.handleReportExpenses)
	mux.HandleFunc("/api/reports/export", s.handleReportExport)
	mux.HandleFunc("/api/settings/vat-rate", s.handleVATRate)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.withSecurityHeaders(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Handler returns the full middleware-wrapped handler, used in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown stops the rate limiter cleanup goroutine and drains in-flight
// requests. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// withSecurityHeaders adds request correlation, rate limiting on mutating
// methods, security headers and request logging with latency metrics.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		clientIP := extractClientIP(r)

		slog.InfoContext(r.Context(), "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
		)

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"request_id", requestID, "client_ip", clientIP)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		metrics.ObserveHTTPRequest(routeLabel(r), strconv.Itoa(wrapped.statusCode), duration)
		slog.InfoContext(r.Context(), "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

// routeLabel collapses numeric path segments so metric cardinality stays
// bounded regardless of how many IDs pass through.
func routeLabel(r *http.Request) string {
	parts := strings.Split(r.URL.Path, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil && p != "" {
			parts[i] = ":id"
		}
	}
	return r.Method + " " + strings.Join(parts, "/")
}

// responseWriter captures the status code for logging and metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Pinger.Ping(ctx); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
