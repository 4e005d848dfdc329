package handler

import (
	"net/http"

	"github.com/itchan-dev/parley/shared/api"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/utils"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, err := h.auth.Login(domain.Credentials{Email: body.Email, Password: body.Password})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.cookies.SetSessionCookie(w, token, h.cfg.JwtTTL())
	utils.WriteOk(w)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSessionCookie(w)
	utils.WriteOk(w)
}
