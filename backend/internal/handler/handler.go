package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/itchan-dev/parley/backend/internal/service"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/validation"
)

// Cookies writes the session cookie, implemented by middleware.Auth.
type Cookies interface {
	SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration)
	ClearSessionCookie(w http.ResponseWriter)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth    service.AuthService
	chat    service.ChatService
	cookies Cookies
	policy  *validation.Policy
	health  HealthChecker
	cfg     *config.Config
}

func New(auth service.AuthService, chat service.ChatService, cookies Cookies, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		auth:    auth,
		chat:    chat,
		cookies: cookies,
		policy:  validation.NewPolicy(cfg.Public.Uploads),
		health:  health,
		cfg:     cfg,
	}
}
