package handler

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	internal_errors "github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/utils"
)

// NewAPIProxy forwards same-origin /api calls from the chat page to the
// backend. Answers are flushed as they arrive.
func NewAPIProxy(baseURL string) http.Handler {
	target, err := url.Parse(baseURL)
	if err != nil {
		panic("invalid api base url: " + err.Error())
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if r.Context().Err() != nil {
				return
			}
			logger.Log.Error("api proxy", "path", r.URL.Path, "error", err)
			utils.WriteErrorAndStatusCode(w, internal_errors.New(http.StatusBadGateway, backendUnavailable))
		},
	}
}
