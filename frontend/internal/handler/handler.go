package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/itchan-dev/parley/frontend/internal/apiclient"
	"github.com/itchan-dev/parley/frontend/internal/markdown"
	"github.com/itchan-dev/parley/frontend/internal/middleware"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/logger"
	mw "github.com/itchan-dev/parley/shared/middleware"
)

type Handler struct {
	Templates map[string]*template.Template
	Public    config.Public
	Renderer  *markdown.Renderer
	APIClient *apiclient.APIClient
	Auth      *mw.Auth
	Proxy     http.Handler // forwards /api to the backend
}

func New(templates map[string]*template.Template, publicCfg config.Public, renderer *markdown.Renderer, apiClient *apiclient.APIClient, auth *mw.Auth) *Handler {
	return &Handler{
		Templates: templates,
		Public:    publicCfg,
		Renderer:  renderer,
		APIClient: apiClient,
		Auth:      auth,
		Proxy:     NewAPIProxy(apiClient.BaseURL),
	}
}

// CommonTemplateData is available in every page as .Common. The user is
// only known on pages behind the gate.
type CommonTemplateData struct {
	LoggedIn  bool
	Email     string
	Error     string
	CSRFToken string
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) CommonTemplateData {
	common := CommonTemplateData{
		Error:     middleware.PopFlash(w, r, middleware.FlashCookieError),
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
	}
	if user := mw.GetUserFromContext(r); user != nil {
		common.LoggedIn = true
		common.Email = user.Email
	}
	return common
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data:   data,
		Common: h.initCommonTemplateData(w, r),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// acceptList is the file picker filter, every configured type once.
func acceptList(u config.Uploads) string {
	var all []string
	for _, group := range [][]string{u.ImageMimeTypes, u.TextMimeTypes, u.PDFMimeTypes, u.DOCXMimeTypes} {
		for _, t := range group {
			if !slices.Contains(all, t) {
				all = append(all, t)
			}
		}
	}
	return strings.Join(all, ",")
}
