package handler

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/itchan-dev/parley/frontend/internal/apiclient"
	"github.com/itchan-dev/parley/frontend/internal/markdown"
	"github.com/itchan-dev/parley/frontend/internal/middleware"
	"github.com/itchan-dev/parley/frontend/web"
	"github.com/itchan-dev/parley/shared/api"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/domain"
	internal_errors "github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/jwt"
	mw "github.com/itchan-dev/parley/shared/middleware"
	"github.com/itchan-dev/parley/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmail = "test@example.com"

// fakeAPI accepts one credential pair and streams a fixed answer.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body api.LoginRequest
		if err := utils.DecodeValidate(r.Body, &body); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		if body.Email != testEmail || body.Password != "password" {
			utils.WriteErrorAndStatusCode(w, internal_errors.ErrInvalidCredentials)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: mw.SessionCookieName, Value: "token", Path: "/", HttpOnly: true, MaxAge: 3600})
		utils.WriteOk(w)
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(mw.SessionCookieName); err != nil || c.Value != "token" {
			utils.WriteErrorAndStatusCode(w, internal_errors.ErrUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Hello, "))
		w.(http.Flusher).Flush()
		w.Write([]byte("world"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testPublic() config.Public {
	uploads := config.DefaultUploads()
	uploads.MaxFileSizeBytes = 1 << 20
	uploads.MaxTotalSizeBytes = 2 << 20
	return config.Public{Uploads: uploads}
}

func newTestHandler(t *testing.T, apiURL string) (*Handler, jwt.JwtService) {
	t.Helper()
	templates, err := web.LoadTemplates()
	require.NoError(t, err)

	client, err := apiclient.New(apiURL)
	require.NoError(t, err)
	client.HttpClient.Jar = nil

	jwtSvc := jwt.New("secret", time.Hour)
	return New(templates, testPublic(), markdown.New(), client, mw.NewAuth(jwtSvc, false)), jwtSvc
}

func flashFrom(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.FlashCookieError {
			msg, err := base64.StdEncoding.DecodeString(c.Value)
			require.NoError(t, err)
			return string(msg)
		}
	}
	return ""
}

func loginForm(email, password string) *http.Request {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginPost(t *testing.T) {
	srv := fakeAPI(t)
	h, _ := newTestHandler(t, srv.URL)

	t.Run("success forwards session cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.LoginPostHandler(rr, loginForm(testEmail, "password"))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, middleware.ChatPath, rr.Header().Get("Location"))

		var session *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == mw.SessionCookieName {
				session = c
			}
		}
		require.NotNil(t, session)
		assert.Equal(t, "token", session.Value)
		assert.True(t, session.HttpOnly)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.LoginPostHandler(rr, loginForm(testEmail, "wrong"))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/login?email=test%40example.com", rr.Header().Get("Location"))
		assert.Equal(t, "Invalid credentials", flashFrom(t, rr))
	})

	t.Run("missing fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.LoginPostHandler(rr, loginForm("", ""))

		assert.Equal(t, middleware.LoginPath, rr.Header().Get("Location"))
		assert.Equal(t, "Invalid credentials", flashFrom(t, rr))
	})
}

func TestLoginPost_BackendDown(t *testing.T) {
	srv := fakeAPI(t)
	h, _ := newTestHandler(t, srv.URL)
	srv.Close()

	rr := httptest.NewRecorder()
	h.LoginPostHandler(rr, loginForm(testEmail, "password"))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, backendUnavailable, flashFrom(t, rr))
}

func TestLoginGet(t *testing.T) {
	h, _ := newTestHandler(t, "http://localhost")

	req := httptest.NewRequest(http.MethodGet, "/login?email=test@example.com", nil)
	req.AddCookie(&http.Cookie{
		Name:  middleware.FlashCookieError,
		Value: base64.StdEncoding.EncodeToString([]byte("Please log in to continue")),
	})
	rr := httptest.NewRecorder()
	h.LoginGetHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	body := rr.Body.String()
	assert.Contains(t, body, `value="test@example.com"`)
	assert.Contains(t, body, "Please log in to continue")
	assert.NotContains(t, body, `action="/logout"`)
	// flash is one-shot
	assert.Empty(t, flashFrom(t, rr))
}

func TestLogout(t *testing.T) {
	h, _ := newTestHandler(t, "http://localhost")

	rr := httptest.NewRecorder()
	h.LogoutHandler(rr, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, middleware.LoginPath, rr.Header().Get("Location"))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, mw.SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestChatGet(t *testing.T) {
	h, jwtSvc := newTestHandler(t, "http://localhost")
	token, err := jwtSvc.NewToken(domain.User{Email: testEmail})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.AddCookie(&http.Cookie{Name: mw.SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	h.Auth.NeedAuth()(http.HandlerFunc(h.ChatGetHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `data-max-file="1048576"`)
	assert.Contains(t, body, `data-max-total="2097152"`)
	assert.Contains(t, body, "image/png")
	assert.Contains(t, body, "Up to 1MB per file, 2MB in total.")
	assert.Contains(t, body, `action="/logout"`)
	assert.Contains(t, body, "/static/chat.js")
}

func TestProfileGet(t *testing.T) {
	h, jwtSvc := newTestHandler(t, "http://localhost")
	token, err := jwtSvc.NewToken(domain.User{Email: testEmail})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: mw.SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	h.Auth.NeedAuth()(http.HandlerFunc(h.ProfileGetHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="test@example.com"`)
	assert.Contains(t, rr.Body.String(), "/static/profile.js")
}

func TestAcceptList(t *testing.T) {
	u := config.Uploads{
		ImageMimeTypes: []string{"image/png"},
		TextMimeTypes:  []string{"text/plain", "image/png"},
		PDFMimeTypes:   []string{"application/pdf"},
		DOCXMimeTypes:  []string{"x/docx"},
	}
	assert.Equal(t, "image/png,text/plain,application/pdf,x/docx", acceptList(u))
}

func TestRender(t *testing.T) {
	h, _ := newTestHandler(t, "http://localhost")

	t.Run("markdown to html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"markdown":"**hi** <script>x</script>"}`))
		rr := httptest.NewRecorder()
		h.Render(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `<strong>hi</strong>`)
		assert.NotContains(t, rr.Body.String(), "script")
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{`))
		rr := httptest.NewRecorder()
		h.Render(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAPIProxy(t *testing.T) {
	backend := fakeAPI(t)
	h, _ := newTestHandler(t, backend.URL)
	front := httptest.NewServer(h.Proxy)
	defer front.Close()

	t.Run("streams the answer with the browser cookie", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, front.URL+"/api/chat", strings.NewReader("prompt=hi"))
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: mw.SessionCookieName, Value: "token"})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Hello, world", string(body))
	})

	t.Run("passes api errors through", func(t *testing.T) {
		resp, err := http.Post(front.URL+"/api/chat", "text/plain", strings.NewReader("x"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAPIProxy_BackendDown(t *testing.T) {
	backend := fakeAPI(t)
	front := httptest.NewServer(NewAPIProxy(backend.URL))
	defer front.Close()
	backend.Close()

	resp, err := http.Post(front.URL+"/api/chat", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), backendUnavailable)
}
