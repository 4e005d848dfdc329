package handler

import (
	"net/http"
	"strings"

	"github.com/itchan-dev/parley/frontend/internal/middleware"
)

// parseEmail prefers the query string so /login?email=... can prefill the form.
func parseEmail(r *http.Request) string {
	if email := r.URL.Query().Get("email"); email != "" {
		return strings.TrimSpace(email)
	}
	return strings.TrimSpace(r.FormValue("email"))
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, msg string) {
	middleware.SetFlash(w, middleware.FlashCookieError, msg, h.Public.Server.SecureCookies)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
