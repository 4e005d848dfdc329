package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/itchan-dev/parley/frontend/internal/middleware"
	internal_errors "github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/validation"
)

const backendUnavailable = "Internal error: backend unavailable."

func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.ChatPath, http.StatusSeeOther)
}

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Email string
	}
	data.Email = parseEmail(r)
	h.renderTemplate(w, r, "login.html", data)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	email := parseEmail(r)
	password := r.FormValue("password")

	retry := middleware.LoginPath
	if email != "" {
		retry += "?email=" + url.QueryEscape(email)
	}

	cookies, err := h.APIClient.Login(r.Context(), email, password)
	if err != nil {
		var apiErr *internal_errors.ErrorWithStatusCode
		if errors.As(err, &apiErr) {
			h.redirectWithFlash(w, r, retry, apiErr.Message)
			return
		}
		logger.Log.Error("during login API call", "error", err)
		h.redirectWithFlash(w, r, retry, backendUnavailable)
		return
	}

	// the browser keeps the session, forward what the backend set
	for _, cookie := range cookies {
		http.SetCookie(w, cookie)
	}
	http.Redirect(w, r, middleware.ChatPath, http.StatusSeeOther)
}

// LogoutHandler drops the session cookie. The backend keeps no session
// state, so there is nothing to revoke there.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.Auth.ClearSessionCookie(w)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

type chatPage struct {
	MaxFileSize    int64
	MaxTotalSize   int64
	MaxFileSizeMB  string
	MaxTotalSizeMB string
	Accept         string
}

func (h *Handler) ChatGetHandler(w http.ResponseWriter, r *http.Request) {
	uploads := h.Public.Uploads
	h.renderTemplate(w, r, "chat.html", chatPage{
		MaxFileSize:    uploads.MaxFileSizeBytes,
		MaxTotalSize:   uploads.MaxTotalSizeBytes,
		MaxFileSizeMB:  validation.FormatSizeMB(uploads.MaxFileSizeBytes),
		MaxTotalSizeMB: validation.FormatSizeMB(uploads.MaxTotalSizeBytes),
		Accept:         acceptList(uploads),
	})
}

// ProfileGetHandler serves the form only. The profile itself lives in the
// browser's local storage.
func (h *Handler) ProfileGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "profile.html", nil)
}
