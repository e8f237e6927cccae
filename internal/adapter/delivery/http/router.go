// Package http provides the HTTP delivery layer of the linksplit service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, identifying visitors, validating input, and formatting responses.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/linksplit/docs"
	"github.com/vadimbarashkov/linksplit/internal/metrics"
	"github.com/vadimbarashkov/linksplit/pkg/middleware/recoverer"
)

// Config holds the transport settings of the router.
type Config struct {
	AllowedOrigins   []string
	SessionCookie    string
	SessionTTL       time.Duration
	SecureCookie     bool
	CountdownSeconds int
	AdminToken       string
}

// UseCases groups the application services the handlers delegate to.
type UseCases struct {
	Links     linkUseCase
	Analytics analyticsUseCase
	Redirect  redirectUseCase
	Limits    limitsUseCase
	Revenue   revenueUseCase
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the linksplit API.
// Client addresses are resolved per request by ClientIP, so chi's RealIP middleware is not installed.
func NewRouter(logger *httplog.Logger, cfg Config, uc UseCases, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", headerUserID, headerAdminToken},
		AllowCredentials: true,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	r.Use(m.Middleware)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, docs.FS, "swagger.yml")
	})

	r.Handle("/metrics", m.Handler())

	validate := newValidator()
	links := newLinkHandler(uc.Links, validate)
	analytics := newAnalyticsHandler(uc.Analytics)
	redirect := newRedirectHandler(uc.Redirect, uc.Limits, validate, m, cfg.CountdownSeconds)
	admin := newAdminHandler(uc.Revenue)
	session := sessionCookie(cfg.SessionCookie, cfg.SessionTTL, cfg.SecureCookie)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", handlePing)

		r.Route("/links", func(r chi.Router) {
			r.With(ownerID(false)).Post("/", links.shortenURL)
			r.With(ownerID(true)).Get("/", links.listLinks)

			r.Route("/{shortCode}", func(r chi.Router) {
				r.Get("/", links.getLink)
				r.With(ownerID(true)).Delete("/", links.deactivateLink)
				r.With(ownerID(true)).Get("/analytics", analytics.getAnalytics)
			})
		})

		r.With(session).Post("/complete-view", redirect.completeView)
		r.Get("/limits", redirect.getLimits)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly(cfg.AdminToken))

			r.Put("/owners/{ownerID}/rates", admin.updateRates)
			r.Post("/owners/{ownerID}/recalculate", admin.recalculate)
			r.Post("/earnings/reconcile", admin.reconcile)
		})
	})

	r.With(session).Get("/link/{shortCode}", redirect.issue)
	r.Get("/{shortCode}", redirect.legacyRedirect)

	return r
}
