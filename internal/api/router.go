// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cratedigger/internal/config"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger
}

// NewRouter creates a router. A nil middleware config uses the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig, logger zerolog.Logger) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
		logger:        logger,
	}
}

// MiddlewareConfigFromServer maps the server section onto the middleware config.
func MiddlewareConfigFromServer(sc *config.ServerConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = append([]string(nil), sc.CORSOrigins...)
	cfg.RateLimitRequests = sc.RateLimitRequests
	cfg.RateLimitWindow = sc.RateLimitWindow
	cfg.RateLimitDisabled = sc.RateLimitDisabled
	cfg.MaxBodyBytes = sc.MaxBodyBytes
	return cfg
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging(router.logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(PrometheusMetrics))
		r.Use(chiMiddleware(router.chiMiddleware.MaxBody))
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", router.handler.CreateAnalysis)
			r.Get("/", router.handler.ListAnalyses)

			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", router.handler.GetAnalysis)
				r.Delete("/", router.handler.DeleteAnalysis)
				r.Get("/recommendations", router.handler.Recommendations)
				r.Get("/sellers", router.handler.Sellers)
			})
		})

		r.Post("/searches", router.handler.SubmitSearch)
		r.Get("/canonical-items/{fingerprint}", router.handler.CanonicalItem)
	})

	return r
}
