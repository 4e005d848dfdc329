package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/jwt"
	mw "github.com/itchan-dev/parley/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) (*Gate, string) {
	t.Helper()
	jwtSvc := jwt.New("secret", time.Hour)
	token, err := jwtSvc.NewToken(domain.User{Email: "test@example.com"})
	require.NoError(t, err)
	return NewGate(mw.NewAuth(jwtSvc, false), false), token
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("page"))
})

func TestNeedAuth(t *testing.T) {
	gate, token := newTestGate(t)
	h := gate.NeedAuth()(okHandler)

	tests := []struct {
		name         string
		cookie       string
		wantCode     int
		wantLocation string
	}{
		{"no cookie", "", http.StatusSeeOther, LoginPath},
		{"forged cookie", "true", http.StatusSeeOther, LoginPath},
		{"valid session", token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/chat", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: mw.SessionCookieName, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "page", rr.Body.String())
			} else {
				assert.NotContains(t, rr.Body.String(), "Please sign-in")
			}
		})
	}
}

func TestNeedAuth_SetsFlash(t *testing.T) {
	gate, _ := newTestGate(t)
	rr := httptest.NewRecorder()
	gate.NeedAuth()(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/profile", nil))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	assert.Equal(t, "Please log in to continue", PopFlash(w, req, FlashCookieError))
	assert.Empty(t, PopFlash(w, httptest.NewRequest(http.MethodGet, "/login", nil), FlashCookieError))
}

func TestGuestOnly(t *testing.T) {
	gate, token := newTestGate(t)
	h := gate.GuestOnly()(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: mw.SessionCookieName, Value: token})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, ChatPath, rr.Header().Get("Location"))
}
