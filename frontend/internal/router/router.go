package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/itchan-dev/parley/frontend/internal/middleware"
	"github.com/itchan-dev/parley/frontend/internal/setup"
	"github.com/itchan-dev/parley/frontend/web"
	mw "github.com/itchan-dev/parley/shared/middleware"
)

// previews are object urls, rendered answers may link images anywhere
const frontendCSP = "default-src 'self'; script-src 'self'; style-src 'self'; " +
	"img-src 'self' blob: data: https:; connect-src 'self'; object-src 'none'; " +
	"base-uri 'self'; form-action 'self'; frame-ancestors 'none'"

func SetupRouter(deps *setup.Dependencies) http.Handler {
	h := deps.Handler
	gate := deps.Gate

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.SecurityHeadersWithCSP(deps.Public.Server.SecureCookies, frontendCSP))

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// the api does its own auth and limits, the session cookie is SameSite=Lax
	r.Handle("/api/*", h.Proxy)

	secure := deps.Public.Server.SecureCookies
	r.Group(func(r chi.Router) {
		r.Use(middleware.IssueCSRFToken(secure))
		r.Use(middleware.ValidateCSRFToken())

		r.Group(func(r chi.Router) {
			r.Use(gate.GuestOnly())
			r.Get("/login", h.LoginGetHandler)
			r.With(mw.RateLimit(deps.LoginLimiter, mw.GetIP)).Post("/login", h.LoginPostHandler)
		})
		r.Post("/logout", h.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(gate.NeedAuth())
			r.Get("/", h.IndexGetHandler)
			r.Get("/chat", h.ChatGetHandler)
			r.Get("/profile", h.ProfileGetHandler)
			r.Post("/render", h.Render)
		})
	})

	return r
}
