package handler

import (
	"net/http"

	"github.com/itchan-dev/parley/shared/api"
	"github.com/itchan-dev/parley/shared/utils"
)

// Render turns a finished answer into sanitized HTML for the chat page.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var body api.RenderRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.RenderResponse{HTML: h.Renderer.Render(body.Markdown)})
}
