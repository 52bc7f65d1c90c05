// internal/server/server.go

// Package server assembles the HTTP API from the service handlers.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"umkmpos/internal/catalog"
	"umkmpos/internal/httpapi"
	"umkmpos/internal/reporting"
	"umkmpos/internal/sales"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the domain services exposed over HTTP.
type Services struct {
	Catalog   catalog.Service
	Sales     sales.Service
	Reporting reporting.Service
}

// Options tune the router. Zero values are usable.
type Options struct {
	Logger *zap.Logger
	// WriteLimiter throttles mutating requests; nil disables it.
	WriteLimiter *rate.Limiter
	Health       Pinger
	Timeout      time.Duration
}

// NewRouter returns the API handler with every route under /api/v1 and a
// /healthz probe.
func NewRouter(svc Services, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpapi.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(compressor().Handler)

	r.Get("/healthz", healthHandler(opts.Health, logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httpapi.WriteLimiter(opts.WriteLimiter))
		r.Use(middleware.AllowContentType("application/json"))

		catalog.NewHandler(svc.Catalog, logger).Routes(r)
		sales.NewHandler(svc.Sales, logger).Routes(r)
		reporting.NewHandler(svc.Reporting, logger).Routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpapi.WriteJSON(w, http.StatusNotFound, httpapi.ErrorResponse{
			Error: "route not found",
			Code:  httpapi.CodeNotFound,
		})
	})
	return r
}

// compressor negotiates brotli or gzip for JSON responses.
func compressor() *middleware.Compressor {
	c := middleware.NewCompressor(5, "application/json")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

func healthHandler(p Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				httpapi.WriteError(w, r, logger, err)
				return
			}
		}
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
