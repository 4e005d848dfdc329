package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/parley/backend/internal/setup"
	mw "github.com/itchan-dev/parley/shared/middleware"
	"github.com/itchan-dev/parley/shared/middleware/metrics"
)

// New creates the api router. Rate limit buckets live in deps and are
// shared by every router built from them.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// JSON and plain text only, nothing to execute
	backendCSP := "default-src 'none'; frame-ancestors 'none'"
	r.Use(mw.SecurityHeadersWithCSP(cfg.Server.SecureCookies, backendCSP))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(mw.RateLimit(deps.LoginLimiter, mw.GetIP)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Use(mw.RateLimit(deps.ChatLimiter, mw.GetUserEmailFromContext))
			r.Post("/chat", h.Chat)
		})
	})

	return r
}

