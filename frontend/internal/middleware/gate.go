package middleware

import (
	"encoding/base64"
	"net/http"

	mw "github.com/itchan-dev/parley/shared/middleware"
)

const (
	FlashCookieError = "flash_error"

	LoginPath = "/login"
	ChatPath  = "/chat"
)

// Gate keeps pages behind the session cookie.
type Gate struct {
	sharedAuth    *mw.Auth
	secureCookies bool
}

func NewGate(sharedAuth *mw.Auth, secureCookies bool) *Gate {
	return &Gate{
		sharedAuth:    sharedAuth,
		secureCookies: secureCookies,
	}
}

// NeedAuth sends visitors without a valid session to the login page.
func (g *Gate) NeedAuth() func(http.Handler) http.Handler {
	return g.wrapWithRedirect(g.sharedAuth.NeedAuth())
}

// GuestOnly sends signed-in users from the login page to the chat.
func (g *Gate) GuestOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := g.sharedAuth.UserFromRequest(r); err == nil {
				http.Redirect(w, r, ChatPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authRedirectWriter turns a 401 from the wrapped middleware into a redirect.
type authRedirectWriter struct {
	http.ResponseWriter
	request       *http.Request
	secureCookies bool
	redirected    bool
}

func (w *authRedirectWriter) WriteHeader(statusCode int) {
	if w.redirected {
		return
	}
	if statusCode == http.StatusUnauthorized {
		w.redirected = true
		redirectToLogin(w.ResponseWriter, w.request, w.secureCookies, "Please log in to continue")
		return
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *authRedirectWriter) Write(data []byte) (int, error) {
	if w.redirected {
		return len(data), nil
	}
	return w.ResponseWriter.Write(data)
}

func (w *authRedirectWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, secureCookies bool, errorMsg string) {
	SetFlash(w, FlashCookieError, errorMsg, secureCookies)
	w.Header().Del("Content-Type")
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (g *Gate) wrapWithRedirect(authMiddleware func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &authRedirectWriter{
				ResponseWriter: w,
				request:        r,
				secureCookies:  g.secureCookies,
			}
			authMiddleware(next).ServeHTTP(wrapper, r)
		})
	}
}

// SetFlash stores a one-shot message for the next page (base64 keeps any
// characters cookie safe).
func SetFlash(w http.ResponseWriter, name, msg string, secureCookies bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.StdEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears a flash message.
func PopFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	msg, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
